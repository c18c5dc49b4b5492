package runlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/autodoc/internal/model"
)

// csvHeader defines the on-disk field order. Read-back maps columns by
// name, so external tools can rely on the header row rather than position.
var csvHeader = []string{"report_id", "project", "engineer", "component_count", "status", "generated_at", "output_path"}

// CSVStore is the production run log: one line-oriented CSV file, one
// record per line, header written when the file is created. Appends go out
// as a single write syscall on an O_APPEND handle and existing content is
// never rewritten, so a crash mid-append can only ever leave a partial
// trailing line behind.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSV returns a store backed by the CSV file at path. The file is
// created on first append (or by Migrate).
func NewCSV(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Migrate creates the log file with its header row when missing. Safe to
// call repeatedly.
func (s *CSVStore) Migrate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(nil)
}

// Append writes one entry to the end of the log.
func (s *CSVStore) Append(_ context.Context, entry model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked([][]string{encodeEntry(entry)})
}

// appendLocked encodes the header (when the file is empty) plus the given
// records into one buffer and hands it to the kernel in a single write.
func (s *CSVStore) appendLocked(records [][]string) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "runlog: open %s", s.path)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return eris.Wrap(err, "runlog: stat log")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return eris.Wrap(err, "runlog: encode header")
		}
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			_ = f.Close()
			return eris.Wrap(err, "runlog: encode entry")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "runlog: encode log")
	}

	if buf.Len() > 0 {
		if _, err := f.Write(buf.Bytes()); err != nil {
			_ = f.Close()
			return eris.Wrapf(err, "runlog: append to %s", s.path)
		}
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return eris.Wrap(err, "runlog: sync log")
		}
	}

	return eris.Wrap(f.Close(), "runlog: close log")
}

// ReadAll returns every entry in append order. A log file that does not
// exist yet reads as empty. Blank lines are skipped; a malformed record is
// tolerated only as the final line (a crash remnant) and is skipped with a
// warning, while corruption anywhere else fails the read.
func (s *CSVStore) ReadAll(_ context.Context) ([]model.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "runlog: read %s", s.path)
	}

	lines := strings.Split(string(data), "\n")

	first, last := -1, -1
	for i := range lines {
		if strings.TrimSpace(strings.TrimSuffix(lines[i], "\r")) != "" {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return nil, nil
	}

	headerFields, err := parseLine(lines[first])
	if err != nil {
		return nil, eris.Wrapf(err, "runlog: corrupt header at line %d", first+1)
	}
	cols, err := mapLogHeader(headerFields)
	if err != nil {
		return nil, err
	}

	var entries []model.LogEntry
	for i := first + 1; i <= last; i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, perr := parseEntry(line, cols)
		if perr != nil {
			if i == last {
				zap.L().Warn("runlog: skipping malformed trailing record",
					zap.String("path", s.path),
					zap.Int("line", i+1),
					zap.Error(perr))
				break
			}
			return nil, eris.Wrapf(perr, "runlog: corrupt record at line %d", i+1)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Stats summarizes the full log history.
func (s *CSVStore) Stats(ctx context.Context) (*model.Stats, error) {
	entries, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return computeStats(entries), nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *CSVStore) Close() error {
	return nil
}

func encodeEntry(e model.LogEntry) []string {
	return []string{
		sanitizeField(e.ReportID),
		sanitizeField(e.Project),
		sanitizeField(e.Engineer),
		strconv.Itoa(e.ComponentCount),
		string(e.Status),
		e.GeneratedAt.UTC().Format(time.RFC3339),
		sanitizeField(e.OutputPath),
	}
}

// sanitizeField folds newlines to spaces so one record always occupies
// exactly one line.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func parseLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSuffix(line, "\r")))
	r.FieldsPerRecord = -1
	return r.Read()
}

// mapLogHeader resolves the header row to column indexes. All known columns
// must be present; extra columns are ignored.
func mapLogHeader(fields []string) (map[string]int, error) {
	cols := make(map[string]int, len(fields))
	for i, f := range fields {
		cols[strings.ToLower(strings.TrimSpace(f))] = i
	}
	for _, want := range csvHeader {
		if _, ok := cols[want]; !ok {
			return nil, eris.Errorf("runlog: log header missing column %q", want)
		}
	}
	return cols, nil
}

func parseEntry(line string, cols map[string]int) (model.LogEntry, error) {
	fields, err := parseLine(line)
	if err != nil {
		return model.LogEntry{}, err
	}
	for _, want := range csvHeader {
		if cols[want] >= len(fields) {
			return model.LogEntry{}, eris.Errorf("record has %d fields, need %q", len(fields), want)
		}
	}

	count, err := strconv.Atoi(fields[cols["component_count"]])
	if err != nil {
		return model.LogEntry{}, eris.Wrap(err, "parse component_count")
	}

	status := model.RunStatus(fields[cols["status"]])
	if status != model.RunStatusSuccess && status != model.RunStatusFailure {
		return model.LogEntry{}, eris.Errorf("unknown run status %q", fields[cols["status"]])
	}

	ts, err := time.Parse(time.RFC3339, fields[cols["generated_at"]])
	if err != nil {
		return model.LogEntry{}, eris.Wrap(err, "parse generated_at")
	}

	return model.LogEntry{
		ReportID:       fields[cols["report_id"]],
		Project:        fields[cols["project"]],
		Engineer:       fields[cols["engineer"]],
		ComponentCount: count,
		Status:         status,
		GeneratedAt:    ts,
		OutputPath:     fields[cols["output_path"]],
	}, nil
}
