package console

import (
	"context"
	"errors"
	"io"
	"strings"
)

var ErrTooManyTries = errors.New("too many tries")

// LineReader yields one line of input at a time.
type LineReader interface {
	ReadLine(ctx context.Context) (string, error)
}

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type PromptOpt func(*promptConfig)

func WithValidator(v promptValidator) PromptOpt {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func WithMaxTries(i int) PromptOpt {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// Prompt writes prompt and reads a line until the validator accepts it.
func Prompt(ctx context.Context, w io.Writer, r LineReader, prompt string, opts ...PromptOpt) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tries := 0
	for {
		if _, err := io.WriteString(w, prompt); err != nil {
			return "", err
		}

		input, err := r.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		input = strings.TrimSpace(input)

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				_, _ = io.WriteString(w, msg)

				tries++
				if config.tries > 0 && config.tries == tries {
					_, _ = io.WriteString(w, "Too many tries.\n")
					return "", ErrTooManyTries
				}

				continue
			}
		}

		return input, nil
	}
}

// PromptYN asks a yes/no question.
func PromptYN(ctx context.Context, w io.Writer, r LineReader, prompt string) (bool, error) {
	str, err := Prompt(ctx, w, r, prompt, WithMaxTries(3), WithValidator(
		func(str string) (bool, string) {
			switch strings.ToLower(str) {
			case "y", "yes", "n", "no":
				return true, ""
			default:
				return false, "Enter 'yes' or 'no'.\n"
			}
		},
	))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(str) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
