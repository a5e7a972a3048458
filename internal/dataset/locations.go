package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"nslaunch/internal/logging"
)

// Location points at a file region the fix is expected to touch. Line
// numbers are optional; a nil start/end means the whole file.
type Location struct {
	FilePath  string `json:"file_path"`
	StartLine *int   `json:"start_line"`
	EndLine   *int   `json:"end_line"`
}

// EditLocations is the structured form attached to dataset samples.
type EditLocations struct {
	Reasoning string     `json:"reasoning"`
	Locations []Location `json:"locations"`
}

// LocationStats summarizes an in-place dataset rewrite.
type LocationStats struct {
	Total         int
	WithLocations int
}

var (
	locationSection = regexp.MustCompile(`(?s)--- EDIT LOCATIONS ---\s*\n(.*?)(\n\n|\z)`)
	locationLine    = regexp.MustCompile(`\x{2022}\s*([^\n:]+)(?::\s*L(\d+)-L(\d+))?`)
)

// reasoningForSource maps a dataset variant to the reasoning string recorded
// alongside its locations.
func reasoningForSource(sourceType string) string {
	switch sourceType {
	case "ground_truth", "ground_truth_wo_lines":
		return "Ground truth locations provided"
	case "artsiv":
		return "Artsiv predicted locations"
	default:
		return "Locations provided"
	}
}

// ExtractLocations splits the edit-locations section out of a problem
// statement. It returns the statement without the section and the parsed
// locations; when no section exists the statement comes back unchanged with
// no locations.
func ExtractLocations(problemStatement string) (string, []Location) {
	m := locationSection.FindStringSubmatchIndex(problemStatement)
	if m == nil {
		return problemStatement, nil
	}

	sectionBody := problemStatement[m[2]:m[3]]
	clean := strings.TrimRight(problemStatement[:m[0]], " \t\n")

	var locations []Location
	for _, line := range strings.Split(sectionBody, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := locationLine.FindStringSubmatch(line)
		if parts == nil {
			continue
		}
		loc := Location{FilePath: strings.TrimSpace(parts[1])}
		if parts[2] != "" && parts[3] != "" {
			start, _ := strconv.Atoi(parts[2])
			end, _ := strconv.Atoi(parts[3])
			loc.StartLine = &start
			loc.EndLine = &end
		}
		locations = append(locations, loc)
	}

	return clean, locations
}

// ProcessFile rewrites a JSONL dataset in place, moving locations embedded
// in problem_statement text into a structured edit_locations field. Samples
// without an embedded section lose any stale edit_locations they carry.
// Unparseable lines are skipped with a warning, matching the source
// preparation scripts.
func ProcessFile(path, sourceType string, logger logging.Logger) (*LocationStats, error) {
	logger = logging.OrNop(logger)
	reasoning := reasoningForSource(sourceType)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}

	var updated [][]byte
	stats := &LocationStats{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var sample map[string]any
		if err := json.Unmarshal(line, &sample); err != nil {
			logger.Warn("failed to parse line %d in %s: %v", lineNum, path, err)
			continue
		}

		statement, _ := sample["problem_statement"].(string)
		clean, locations := ExtractLocations(statement)
		sample["problem_statement"] = clean

		if len(locations) > 0 {
			sample["edit_locations"] = EditLocations{
				Reasoning: reasoning,
				Locations: locations,
			}
			stats.WithLocations++
		} else {
			delete(sample, "edit_locations")
		}

		out, err := json.Marshal(sample)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("marshal line %d in %s: %w", lineNum, path, err)
		}
		updated = append(updated, out)
		stats.Total++
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	f.Close()

	var buf strings.Builder
	for _, line := range updated {
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return nil, fmt.Errorf("write dataset %s: %w", path, err)
	}

	logger.Info("processed %d samples from %s (%d with edit_locations)",
		stats.Total, path, stats.WithLocations)
	return stats, nil
}
