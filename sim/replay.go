package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"mm-engine-go/market"
)

// Replayer streams snapshots from a CSV file. Each row is a timestamp
// followed by repeated (bid_price, bid_qty, ask_price, ask_qty) level groups,
// best levels first. A header row is skipped if the first field is not
// numeric.
type Replayer struct {
	snaps []market.Snapshot
	pos   int
}

func NewReplayer(path string) (*Replayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may carry different depth

	var snaps []market.Snapshot
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read replay file: %w", err)
		}
		line++
		if line == 1 {
			if _, err := strconv.ParseFloat(rec[0], 64); err != nil {
				continue // header
			}
		}
		snap, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("replay line %d: %w", line, err)
		}
		snaps = append(snaps, snap)
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("replay file %s has no snapshots", path)
	}
	return &Replayer{snaps: snaps}, nil
}

func parseRow(rec []string) (market.Snapshot, error) {
	var snap market.Snapshot
	if len(rec) < 5 || (len(rec)-1)%4 != 0 {
		return snap, fmt.Errorf("want 1+4n fields, got %d", len(rec))
	}
	ts, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return snap, fmt.Errorf("timestamp: %w", err)
	}
	snap.Timestamp = ts

	for i := 1; i+3 < len(rec); i += 4 {
		vals := make([]float64, 4)
		for j := 0; j < 4; j++ {
			v, err := strconv.ParseFloat(rec[i+j], 64)
			if err != nil {
				return snap, fmt.Errorf("field %d: %w", i+j, err)
			}
			vals[j] = v
		}
		if vals[1] > 0 {
			snap.Bids = append(snap.Bids, market.Level{Price: vals[0], Qty: vals[1]})
		}
		if vals[3] > 0 {
			snap.Asks = append(snap.Asks, market.Level{Price: vals[2], Qty: vals[3]})
		}
	}
	return snap, nil
}

func (r *Replayer) Next() (market.Snapshot, bool) {
	if r.pos >= len(r.snaps) {
		return market.Snapshot{}, false
	}
	snap := r.snaps[r.pos]
	r.pos++
	return snap, true
}

// Len reports the number of loaded snapshots.
func (r *Replayer) Len() int { return len(r.snaps) }
