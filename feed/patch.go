package feed

import "github.com/goliatone/go-feed-cache/cache"

// PrependPost returns a patch that puts post at the top of the first page.
// A feed that was never loaded, or loaded without pages, stays as it is;
// the next fetch will include the post. Later pages are shared, not copied.
func PrependPost(post Post) cache.PatchFunc {
	return cache.Patch(func(old Feed, found bool) cache.Outcome {
		if !found || len(old.Pages) == 0 {
			return cache.Unchanged()
		}

		first := old.Pages[0]
		posts := make([]Post, 0, len(first.Posts)+1)
		posts = append(posts, post)
		posts = append(posts, first.Posts...)

		pages := make([]Page, len(old.Pages))
		copy(pages, old.Pages)
		pages[0] = Page{Posts: posts, NextCursor: first.NextCursor}

		return cache.SetTo(Feed{Pages: pages})
	})
}

// ApplyFollow returns the patch for a confirmed follow toggle on the
// profile being followed. The count moves by one in the direction of added
// and IsFollowing takes its value, whatever it was before.
func ApplyFollow(added bool) cache.PatchFunc {
	delta := countModifier(added)
	return cache.Patch(func(old Profile, found bool) cache.Outcome {
		if !found {
			return cache.Unchanged()
		}
		next := old
		next.IsFollowing = added
		next.FollowersCount = old.FollowersCount + delta
		return cache.SetTo(next)
	})
}

// ApplyFollowing returns the patch for the follower's own profile after a
// confirmed follow toggle.
func ApplyFollowing(added bool) cache.PatchFunc {
	delta := countModifier(added)
	return cache.Patch(func(old Profile, found bool) cache.Outcome {
		if !found {
			return cache.Unchanged()
		}
		next := old
		next.FollowsCount = old.FollowsCount + delta
		return cache.SetTo(next)
	})
}

// AddTweets returns a patch that moves a profile's tweet count by n.
func AddTweets(n int) cache.PatchFunc {
	return cache.Patch(func(old Profile, found bool) cache.Outcome {
		if !found || n == 0 {
			return cache.Unchanged()
		}
		next := old
		next.TweetsCount = old.TweetsCount + n
		return cache.SetTo(next)
	})
}

// ApplyLike returns a patch that marks post id as liked or unliked in a
// feed. Feeds that do not contain the post are left unchanged.
func ApplyLike(id string, added bool) cache.PatchFunc {
	delta := countModifier(added)
	return cache.Patch(func(old Feed, found bool) cache.Outcome {
		if !found {
			return cache.Unchanged()
		}

		var pages []Page
		for i, page := range old.Pages {
			idx := indexOf(page.Posts, id)
			if idx < 0 {
				continue
			}
			if pages == nil {
				pages = make([]Page, len(old.Pages))
				copy(pages, old.Pages)
			}

			posts := make([]Post, len(page.Posts))
			copy(posts, page.Posts)
			posts[idx].LikeCount += delta
			posts[idx].LikedByMe = added
			pages[i] = Page{Posts: posts, NextCursor: page.NextCursor}
		}

		if pages == nil {
			return cache.Unchanged()
		}
		return cache.SetTo(Feed{Pages: pages})
	})
}

func indexOf(posts []Post, id string) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func countModifier(added bool) int {
	if added {
		return 1
	}
	return -1
}
