package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	pollInterval = 200 * time.Millisecond
	scanBuffer   = 64 << 10
	maxLineSize  = 1 << 20
)

// TailOptions selects which part of the log file to read. A negative Offset
// requests the last Limit lines; a non-negative Offset reads forward from that
// byte position. With Follow set, an empty read blocks up to Wait for new
// lines to arrive.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult carries the lines read plus the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads log lines according to opts. A missing file yields an empty
// result with offset zero so callers can keep polling while the daemon
// creates its first log.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	res := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		res.Offset = 0
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return res, fmt.Errorf("%s is a directory", path)
	}

	if opts.Wait < 0 {
		opts.Wait = 0
	}

	if opts.Offset < 0 {
		res.Lines, res.Offset, err = tailEnd(path, opts.Limit)
	} else {
		offset := opts.Offset
		if offset > info.Size() {
			// The file was rotated or truncated underneath us.
			offset = info.Size()
		}
		res.Lines, res.Offset, err = scanFrom(path, offset)
	}
	if err != nil {
		return TailResult{Offset: opts.Offset}, err
	}

	if opts.Follow && opts.Wait > 0 && len(res.Lines) == 0 {
		return pollForLines(ctx, path, res.Offset, opts.Wait)
	}
	return res, nil
}

// tailEnd returns the final limit lines and the end-of-file offset. A zero or
// negative limit skips straight to the end, which seeds follow mode without
// replaying history.
func tailEnd(path string, limit int) ([]string, int64, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if limit <= 0 {
		end, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek %s: %w", path, err)
		}
		return nil, end, nil
	}

	sc := newScanner(f)
	ring := make([]string, 0, limit)
	next := 0
	for sc.Scan() {
		if len(ring) < limit {
			ring = append(ring, sc.Text())
			continue
		}
		ring[next] = sc.Text()
		next = (next + 1) % limit
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek %s: %w", path, err)
	}

	if next == 0 {
		return ring, end, nil
	}
	out := make([]string, 0, len(ring))
	out = append(out, ring[next:]...)
	out = append(out, ring[:next]...)
	return out, end, nil
}

// scanFrom reads every complete line starting at offset and reports where the
// next read should resume.
func scanFrom(path string, offset int64) ([]string, int64, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek %s: %w", path, err)
	}

	sc := newScanner(f)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}

	end, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("seek %s: %w", path, err)
	}
	return lines, end, nil
}

func pollForLines(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	res := TailResult{Offset: offset}
	deadline := time.Now().Add(wait)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		lines, end, err := scanFrom(path, offset)
		if err != nil {
			return res, err
		}
		res.Offset = end
		if len(lines) > 0 {
			res.Lines = lines
			return res, nil
		}
		if !time.Now().Before(deadline) {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, scanBuffer), maxLineSize)
	return sc
}
