package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"nslaunch/internal/logging"
)

// MergeOptions names the inputs and outputs of a findings merge.
type MergeOptions struct {
	// DefaultPath is the base dataset (default.jsonl).
	DefaultPath string
	// PredictionsPath holds per-instance locations and findings keyed by
	// instance_id.
	PredictionsPath string
	// WithFindingsPath receives records with locations and findings.
	WithFindingsPath string
	// LocationsOnlyPath receives the same records with findings stripped.
	LocationsOnlyPath string
}

// MergeStats summarizes a findings merge.
type MergeStats struct {
	Records        int
	AddedLocations int
	AddedFindings  int
}

type predicted struct {
	Locations json.RawMessage
	Findings  json.RawMessage
}

// MergeFindings streams the base dataset and joins predicted locations and
// findings onto each record, producing one output with both fields and one
// with findings removed.
func MergeFindings(opts MergeOptions, logger logging.Logger) (*MergeStats, error) {
	logger = logging.OrNop(logger)

	lookup, err := buildLookup(opts.PredictionsPath, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("built lookup for %d instances from %s", len(lookup), opts.PredictionsPath)

	in, err := os.Open(opts.DefaultPath)
	if err != nil {
		return nil, fmt.Errorf("open base dataset %s: %w", opts.DefaultPath, err)
	}
	defer in.Close()

	outFull, err := os.Create(opts.WithFindingsPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", opts.WithFindingsPath, err)
	}
	defer outFull.Close()

	outLoc, err := os.Create(opts.LocationsOnlyPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", opts.LocationsOnlyPath, err)
	}
	defer outLoc.Close()

	fullWriter := bufio.NewWriter(outFull)
	locWriter := bufio.NewWriter(outLoc)

	stats := &MergeStats{}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec map[string]json.RawMessage
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parse line %d of %s: %w", lineNum, opts.DefaultPath, err)
		}

		iid := instanceID(rec)
		if iid == "" {
			continue
		}

		if extra, ok := lookup[iid]; ok {
			if extra.Locations != nil {
				rec["locations"] = extra.Locations
				stats.AddedLocations++
			}
			if extra.Findings != nil {
				rec["findings"] = extra.Findings
				stats.AddedFindings++
			}
		}

		if err := writeRecord(fullWriter, rec); err != nil {
			return nil, err
		}

		delete(rec, "findings")
		if err := writeRecord(locWriter, rec); err != nil {
			return nil, err
		}

		stats.Records++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read base dataset %s: %w", opts.DefaultPath, err)
	}

	if err := fullWriter.Flush(); err != nil {
		return nil, fmt.Errorf("flush %s: %w", opts.WithFindingsPath, err)
	}
	if err := locWriter.Flush(); err != nil {
		return nil, fmt.Errorf("flush %s: %w", opts.LocationsOnlyPath, err)
	}

	logger.Info("merged %d records (%d locations, %d findings added)",
		stats.Records, stats.AddedLocations, stats.AddedFindings)
	return stats, nil
}

// buildLookup reads the predictions file line by line, keeping only the
// fields the merge needs.
func buildLookup(path string, logger logging.Logger) (map[string]predicted, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open predictions %s: %w", path, err)
	}
	defer f.Close()

	lookup := make(map[string]predicted)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec map[string]json.RawMessage
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Warn("failed to parse line %d of %s: %v", lineNum, path, err)
			continue
		}

		iid := instanceID(rec)
		if iid == "" {
			continue
		}

		lookup[iid] = predicted{
			Locations: nonNull(rec["locations"]),
			Findings:  nonNull(rec["findings"]),
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read predictions %s: %w", path, err)
	}

	return lookup, nil
}

func instanceID(rec map[string]json.RawMessage) string {
	raw, ok := rec["instance_id"]
	if !ok {
		return ""
	}
	var iid string
	if err := json.Unmarshal(raw, &iid); err != nil {
		return ""
	}
	return iid
}

func nonNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

func writeRecord(w *bufio.Writer, rec map[string]json.RawMessage) error {
	out, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return w.WriteByte('\n')
}
