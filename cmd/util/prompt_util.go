package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/tranvictor/bankdapp/ui"
)

type StringValidator func(st string) error

// PromptInputWithValidation shows a label, then loops until the validator passes.
func PromptInputWithValidation(u ui.UI, label string, validator StringValidator) string {
	if label != "" {
		u.Info(label)
	}
	return u.Ask(func(s string) error {
		return validator(s)
	})
}

// PromptItemInList shows a label and loops until the user enters one of options.
func PromptItemInList(u ui.UI, label string, options []string) string {
	if label != "" {
		u.Info(label)
	}
	return u.Ask(func(s string) error {
		s = strings.TrimSpace(s)
		for _, op := range options {
			if s == strings.TrimSpace(op) {
				return nil
			}
		}
		return fmt.Errorf("please enter one of %s", strings.Join(options, ", "))
	})
}

// PromptInput shows an optional label and reads one line.
func PromptInput(u ui.UI, label string) string {
	if label != "" {
		u.Info(label)
	}
	return u.Ask(nil)
}

// PromptFilePath loops until the path names a readable file.
func PromptFilePath(u ui.UI, label string) string {
	return PromptInputWithValidation(u, label, func(s string) error {
		info, err := os.Stat(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", s)
		}
		return nil
	})
}
