// Package mboxconv maps messages of an mbox archive onto generator
// inputs so whole mailboxes can be batch-converted.
package mboxconv

import (
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	mboxlib "github.com/emersion/go-mbox"

	"github.com/gavinnn-m/vcon-parser/generator"
)

// Read opens an mbox file and calls the provided callback with the
// ordinal and mapped input for each message. Messages whose headers
// cannot be read at all are counted as skipped instead of aborting
// the walk; a callback error stops it.
func Read(path string, callback func(ordinal int, in generator.EmailInput) error) (skipped int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	return read(mboxlib.NewReader(file), callback)
}

func read(reader *mboxlib.Reader, callback func(ordinal int, in generator.EmailInput) error) (skipped int, err error) {
	for ordinal := 0; ; ordinal++ {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return skipped, nil
			}
			return skipped, fmt.Errorf("message %d: %w", ordinal, err)
		}

		msg, err := mail.ReadMessage(msgReader)
		if err != nil {
			skipped++
			continue
		}

		body, err := io.ReadAll(msg.Body)
		if err != nil {
			skipped++
			continue
		}

		if err := callback(ordinal, mapMessage(msg.Header, body)); err != nil {
			return skipped, err
		}
	}
}

// mapMessage lifts the relevant headers and the body into the typed
// phase-1 input. Headers are carried through as-is; address parsing
// and validation stay with the generator.
func mapMessage(header mail.Header, body []byte) generator.EmailInput {
	in := generator.EmailInput{
		Subject:   header.Get("Subject"),
		From:      header.Get("From"),
		To:        header.Get("To"),
		CC:        header.Get("Cc"),
		Content:   strings.TrimRight(string(body), "\n"),
		MessageID: trimMessageID(header.Get("Message-Id")),
		ReplyTo:   header.Get("Reply-To"),
		InReplyTo: trimMessageID(header.Get("In-Reply-To")),
	}
	if in.MessageID == "" {
		in.MessageID = trimMessageID(header.Get("Message-ID"))
	}
	if refs := header.Get("References"); refs != "" {
		in.References = generator.StringList(strings.Fields(refs))
	}

	if date := header.Get("Date"); date != "" {
		if t, err := mail.ParseDate(date); err == nil {
			in.EntryDate = t.UTC().Format(time.RFC3339)
		}
	}

	return in
}

func trimMessageID(id string) string {
	return strings.Trim(strings.TrimSpace(id), "<>")
}
