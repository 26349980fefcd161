package control

import (
	"bufio"
	"bytes"
	"context"
	"io"

	corecontrol "github.com/v2xlab/obu/core/control"
	"github.com/v2xlab/obu/core/logger"
)

// ReadCommands decodes line-delimited JSON commands from r and sends them on
// the returned channel. Blank and malformed lines are skipped. The channel is
// closed when r is exhausted or ctx is done.
func ReadCommands(ctx context.Context, r io.Reader, log logger.Logger) <-chan corecontrol.Command {
	out := make(chan corecontrol.Command)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			cmd, err := corecontrol.Decode(line)
			if err != nil {
				log.Warnf("skip control line %q: %v", line, err)
				continue
			}
			select {
			case out <- cmd:
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			log.Errorf("read control channel: %v", err)
		}
	}()
	return out
}
