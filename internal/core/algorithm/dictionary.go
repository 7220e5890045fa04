package algorithm

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

// Dictionary replays a wordlist in file order, one candidate per line.
type Dictionary struct {
	settings   domain.SearchConfig
	decoding   encoding.Encoding
	totalWords uint64
	produced   atomic.Uint64
}

func NewDictionary(settings domain.SearchConfig) (*Dictionary, error) {
	enc, err := lookupEncoding(settings.WordlistEncoding)
	if err != nil {
		return nil, &domain.ConfigError{
			Field:  "encoding",
			Reason: fmt.Sprintf("unknown wordlist encoding %q", settings.WordlistEncoding),
			Err:    err,
		}
	}

	d := &Dictionary{
		settings: settings,
		decoding: enc,
	}
	d.countTotalWords()
	return d, nil
}

// lookupEncoding resolves WHATWG names such as "latin1" or "windows-1251".
// UTF-8 maps to a pass-through decoder so invalid bytes can be dropped later
// instead of being replaced with U+FFFD.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return encoding.Nop, nil
	}
	return htmlindex.Get(name)
}

func (d *Dictionary) Start(ctx context.Context) (<-chan string, <-chan error) {
	passwords := make(chan string)
	errors := make(chan error, 1)

	go func() {
		defer close(passwords)
		defer close(errors)

		if err := d.processWordlist(ctx, passwords); err != nil {
			errors <- err
		}
	}()

	return passwords, errors
}

// maxLineSize caps a single wordlist line.
const maxLineSize = 64 * 1024 * 1024

func (d *Dictionary) open() (io.ReadCloser, *bufio.Scanner, error) {
	file, err := os.Open(d.settings.WordlistPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidWordlist, err)
	}
	decoded := transform.NewReader(file, unicode.BOMOverride(d.decoding.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)
	return file, scanner, nil
}

// scanLines is bufio.ScanLines extended to classic Mac files: a line ends at
// "\n", "\r\n" or a lone "\r". A final terminator does not add an empty line.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if !atEOF {
			// Need the next byte to tell "\r" from "\r\n".
			return 0, nil, nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (d *Dictionary) processWordlist(ctx context.Context, passwords chan<- string) error {
	file, scanner, err := d.open()
	if err != nil {
		return err
	}
	defer file.Close()

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		select {
		case passwords <- cleanWord(scanner.Text()):
			d.produced.Add(1)
		case <-ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading wordlist %s: %w", d.settings.WordlistPath, err)
	}
	return nil
}

// cleanWord drops bytes that are not valid UTF-8 and trims surrounding
// whitespace. Blank lines stay as "".
func cleanWord(line string) string {
	return strings.TrimSpace(strings.ToValidUTF8(line, ""))
}

func (d *Dictionary) countTotalWords() {
	d.totalWords = 0
	file, scanner, err := d.open()
	if err != nil {
		return
	}
	defer file.Close()

	for scanner.Scan() {
		d.totalWords++
	}
}

func (d *Dictionary) Total() uint64 {
	return d.totalWords
}

func (d *Dictionary) Produced() uint64 {
	return d.produced.Load()
}

func (d *Dictionary) Name() domain.AttackMode {
	return domain.ModeDictionary
}
