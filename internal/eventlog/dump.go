package eventlog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// Dump writes a human-readable listing of every entry to w.
func (l *Log) Dump(ctx context.Context, w io.Writer) error {
	size, err := l.Size(ctx)
	if err != nil {
		return err
	}

	entries, err := l.Entries(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== LOG DUMP BEGIN ===")
	fmt.Fprintf(w, "Size: %s of %s, %s entries\n",
		humanize.Bytes(uint64(size)), humanize.Bytes(uint64(l.maxSize)), humanize.Comma(int64(len(entries))))

	for i, e := range entries {
		valid := "VALID"
		if !e.Valid {
			valid = "INVALID"
		}

		var hex strings.Builder
		for _, b := range e.Record.PayloadBytes() {
			fmt.Fprintf(&hex, "%02X ", b)
		}

		fmt.Fprintf(w, "Entry %d:\n", i)
		fmt.Fprintf(w, "  HMAC   : %s\n", valid)
		fmt.Fprintf(w, "  Time   : %d\n", e.Record.Timestamp)
		fmt.Fprintf(w, "  Type   : %d (%s)\n", uint8(e.Record.Type), e.Record.Type)
		fmt.Fprintf(w, "  Length : %d\n", e.Record.Length)
		fmt.Fprintf(w, "  Payload: %s\n", hex.String())
	}

	_, err = fmt.Fprintln(w, "=== LOG DUMP END ===")
	return err
}
