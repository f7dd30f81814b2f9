// Command reconcile-harness reads newline-terminated "mode,timestamp,id"
// records from stdin (mode 1 adds to the initiator's set only, 2 to the
// responder's only, 3 to both), then drives two in-process
// rangesync.Reconciler values to convergence and prints the resulting
// HAVE/NEED sets to stdout as "xor,HAVE,<hex id>" / "xor,NEED,<hex id>"
// lines.
//
// The harness itself talks to both Reconcilers directly; moving frames
// between separate processes over a real transport is left to a caller
// wrapping this package.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/setrec/rangesync/rangesync"
)

func main() {
	idSize := flag.Int("idsize", 16, "id size in bytes, 8..32")
	frameLimit := flag.Uint64("frame-limit", 0, "frame size limit in bytes, 0 means unbounded")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "harness: logger setup:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(os.Stdin, os.Stdout, *idSize, *frameLimit, log); err != nil {
		log.Error("harness failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, idSize int, frameLimit uint64, log *zap.Logger) error {
	initiator, err := rangesync.New(idSize, rangesync.WithLogger(log.Named("initiator")))
	if err != nil {
		return fmt.Errorf("new initiator: %w", err)
	}
	responder, err := rangesync.New(idSize, rangesync.WithLogger(log.Named("responder")), rangesync.WithFrameSizeLimit(frameLimit))
	if err != nil {
		return fmt.Errorf("new responder: %w", err)
	}

	if err := readRecords(in, idSize, initiator, responder); err != nil {
		return err
	}
	if err := initiator.Seal(); err != nil {
		return fmt.Errorf("seal initiator: %w", err)
	}
	if err := responder.Seal(); err != nil {
		return fmt.Errorf("seal responder: %w", err)
	}

	have, need, err := converge(initiator, responder, frameLimit, log)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	defer w.Flush()
	for _, id := range have {
		fmt.Fprintf(w, "xor,HAVE,%s\n", id.String())
	}
	for _, id := range need {
		fmt.Fprintf(w, "xor,NEED,%s\n", id.String())
	}
	return nil
}

// readRecords parses "mode,timestamp,id" lines from in and routes each
// record to the initiator's set, the responder's set, or both.
func readRecords(in io.Reader, idSize int, initiator, responder *rangesync.Reconciler) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		mode, timestamp, id, err := parseRecord(text, idSize)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		switch mode {
		case 1:
			err = initiator.AddItem(timestamp, id)
		case 2:
			err = responder.AddItem(timestamp, id)
		case 3:
			if err = initiator.AddItem(timestamp, id); err == nil {
				err = responder.AddItem(timestamp, id)
			}
		default:
			return fmt.Errorf("line %d: bad mode %d", line, mode)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}

func parseRecord(text string, idSize int) (mode int, timestamp uint64, id []byte, err error) {
	parts := strings.SplitN(text, ",", 3)
	if len(parts) != 3 {
		return 0, 0, nil, fmt.Errorf("malformed record %q", text)
	}
	mode, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, nil, fmt.Errorf("bad mode: %w", err)
	}
	timestamp, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("bad timestamp: %w", err)
	}
	id, err = hex.DecodeString(parts[2])
	if err != nil {
		return 0, 0, nil, fmt.Errorf("bad id: %w", err)
	}
	if len(id) != idSize {
		return 0, 0, nil, fmt.Errorf("id %q is %d bytes, want %d", parts[2], len(id), idSize)
	}
	return mode, timestamp, id, nil
}

// converge drives initiator and responder until the initiator builds an
// empty frame, accumulating the initiator's HAVE and NEED sets along the
// way.
func converge(initiator, responder *rangesync.Reconciler, frameLimit uint64, log *zap.Logger) (have, need []rangesync.ID, err error) {
	frame, err := initiator.Initiate(frameLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("initiate: %w", err)
	}

	for round := 0; len(frame) > 0; round++ {
		log.Debug("round", zap.Int("n", round), zap.Int("bytes", len(frame)))

		respFrame, err := responder.Reconcile(frame)
		if err != nil {
			return nil, nil, fmt.Errorf("responder reconcile: %w", err)
		}

		var roundHave, roundNeed []rangesync.ID
		roundHave, roundNeed, frame, err = initiator.ReconcileInitiator(respFrame)
		if err != nil {
			return nil, nil, fmt.Errorf("initiator reconcile: %w", err)
		}
		have = append(have, roundHave...)
		need = append(need, roundNeed...)
	}

	return have, need, nil
}
