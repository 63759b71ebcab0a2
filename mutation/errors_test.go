package mutation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

func TestKindOf(t *testing.T) {
	ozzoErr := CreateTweetInput{}.Validate()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "ozzo validation", err: NewValidationError(ozzoErr, CreateTweet), want: KindValidation},
		{name: "bad input", err: goerrors.New("bad", goerrors.CategoryBadInput), want: KindValidation},
		{name: "unauthorized", err: NewUnauthorized(ToggleFollow), want: KindAuthorization},
		{name: "forbidden", err: goerrors.New("no", goerrors.CategoryAuthz), want: KindAuthorization},
		{name: "not found", err: NewNotFound("missing"), want: KindNotFound},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", NewNotFound("missing")), want: KindNotFound},
		{name: "transport", err: NewTransportError(errors.New("refused"), "down"), want: KindTransport},
		{name: "deadline", err: context.DeadlineExceeded, want: KindTransport},
		{name: "conflict", err: goerrors.New("dup", goerrors.CategoryConflict), want: KindConflict},
		{name: "plain", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewValidationError_FieldErrors(t *testing.T) {
	err := NewValidationError(CreateTweetInput{}.Validate(), CreateTweet)

	var gerr *goerrors.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if len(gerr.ValidationErrors) != 1 || gerr.ValidationErrors[0].Field != "content" {
		t.Errorf("unexpected field errors %+v", gerr.ValidationErrors)
	}
}

func TestInputs_Validate(t *testing.T) {
	long := make([]rune, MaxContentLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name    string
		input   validation.Validatable
		wantErr bool
	}{
		{name: "tweet ok", input: CreateTweetInput{Content: "hi"}},
		{name: "tweet empty", input: CreateTweetInput{}, wantErr: true},
		{name: "tweet too long", input: CreateTweetInput{Content: string(long)}, wantErr: true},
		{name: "follow ok", input: ToggleFollowInput{UserID: "u1"}},
		{name: "follow missing user", input: ToggleFollowInput{}, wantErr: true},
		{name: "like missing id", input: ToggleLikeInput{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
