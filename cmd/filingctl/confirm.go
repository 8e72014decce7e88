package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// lineReader returns the next line of user input.
type lineReader func(ctx context.Context) (string, error)

// promptConfirmer asks on out and accepts "y" or "yes".
type promptConfirmer struct {
	out  io.Writer
	next lineReader
}

// Confirm prints prompt and reads one answer. Anything other than y/yes
// declines.
func (c promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.next(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// readerLines reads lines from in. EOF without any input is returned as
// io.EOF.
func readerLines(in io.Reader) lineReader {
	r := bufio.NewReader(in)
	return func(context.Context) (string, error) {
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		return line, nil
	}
}

// channelLines reads lines already split by another goroutine.
func channelLines(lines <-chan string) lineReader {
	return func(ctx context.Context) (string, error) {
		select {
		case line, ok := <-lines:
			if !ok {
				return "", io.EOF
			}
			return line, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}
