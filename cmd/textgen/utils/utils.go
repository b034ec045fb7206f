package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Command int

const (
	None Command = iota
	Generate
	GenerateWithMetadata
	GenerateFromTemplate
	GenerateFromTemplateWithMetadata
	IncreaseTokens
	DecreaseTokens
	Show
	Save
	Quit
	Help
	Unknown
)

var commands = map[string]Command{
	":gen":  Generate,
	":meta": GenerateWithMetadata,
	":tpl":  GenerateFromTemplate,
	":tplm": GenerateFromTemplateWithMetadata,
	":+":    IncreaseTokens,
	":-":    DecreaseTokens,
	":show": Show,
	":w":    Save,
	":q":    Quit,
	":quit": Quit,
	":help": Help,
}

// ParseCommand recognises an interactive command line. Lines that do not
// start with ':' are document text and return None.
func ParseCommand(line string) Command {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return None
	}
	if cmd, ok := commands[strings.ToLower(trimmed)]; ok {
		return cmd
	}
	return Unknown
}

func FormatPrompt(str string, counter, maxTokens int, now time.Time) string {
	variables := map[string]string{
		"%datetime": now.Format("2006-01-02 15:04:05"),
		"%date":     now.Format("2006-01-02"),
		"%time":     now.Format("15:04:05"),
		"%counter":  fmt.Sprintf("%d", counter),
		"%tokens":   fmt.Sprintf("%d", maxTokens),
	}

	// Replace placeholders in the order of longest to shortest
	for _, key := range []string{"%datetime", "%date", "%time", "%counter", "%tokens"} {
		str = strings.ReplaceAll(str, key, variables[key])
	}

	// Ensure the last character is a space
	if str != "" && !strings.HasSuffix(str, " ") {
		str += " "
	}

	str = strings.ReplaceAll(str, "\\n", "\n")

	return str
}

// reportedError marks an error the user has already been shown.
type reportedError struct {
	err error
}

func (r reportedError) Error() string { return r.err.Error() }

func (r reportedError) Unwrap() error { return r.err }

// Reported wraps err so ShouldPrint skips it. A nil err stays nil.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// ShouldPrint reports whether err still needs to be printed on exit.
func ShouldPrint(err error) bool {
	var reported reportedError
	return err != nil && !errors.As(err, &reported)
}
