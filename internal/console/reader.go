package console

import (
	"bufio"
	"context"
	"io"

	"github.com/ramonehamilton/meta-collector/internal/logging"
)

// ReadKeys reads lines from r on its own goroutine and sends the keys of
// each line on the returned channel. The channel is closed at end of input
// or when ctx is done; a closed channel means the user is gone.
func ReadKeys(ctx context.Context, r io.Reader) <-chan []Key {
	out := make(chan []Key)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- ParseLine(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logging.Log.WithError(err).Warn("console input failed")
		}
	}()

	return out
}
