package attendance

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workstream-hr/payroll-core-go/internal/domain/attendance"
)

// importHeader is the fixed column layout of a bulk punch file.
var importHeader = []string{
	"employeeId", "type", "time", "policy", "roundMode", "intervalMinutes",
	"gracePeriodMinutes", "expectedCheckInTime", "latenessThresholdMinutes",
	"automaticDeductionMinutes", "location", "terminalId", "deviceId",
}

// ImportCSV implements attendance.Service. Each data row maps to one
// RecordPunch call; rows that fail to parse or are rejected are skipped
// and counted. A content checksum makes re-importing the same file a
// counted no-op.
func (s *AttendanceServiceImpl) ImportCSV(ctx context.Context, r io.Reader, source string) (attendance.ImportSummary, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return attendance.ImportSummary{}, fmt.Errorf("failed to read import file: %w", err)
	}

	sum := sha256.Sum256(content)
	checksum := hex.EncodeToString(sum[:])

	if batch, err := s.imports.GetByChecksum(ctx, checksum); err == nil {
		slog.Info("import batch already processed, replaying summary",
			"source", source,
			"batch_id", batch.ID,
		)
		return attendance.ImportSummary{
			BatchID:  batch.ID,
			Source:   batch.Source,
			Imported: batch.Imported,
			Skipped:  batch.Skipped,
			Replayed: true,
		}, nil
	} else if !errors.Is(err, attendance.ErrImportBatchNotFound) {
		return attendance.ImportSummary{}, fmt.Errorf("failed to check import marker: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return attendance.ImportSummary{}, attendance.ErrImportHeaderMismatch
	}
	if !headerMatches(header) {
		return attendance.ImportSummary{}, attendance.ErrImportHeaderMismatch
	}

	imported, skipped := 0, 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			slog.Warn("skipping unparsable import row", "source", source, "line", line, "error", err)
			continue
		}

		req, err := rowToRequest(row)
		if err != nil {
			skipped++
			slog.Warn("skipping malformed import row", "source", source, "line", line, "error", err)
			continue
		}

		if _, err := s.RecordPunch(ctx, req); err != nil {
			skipped++
			slog.Warn("skipping rejected import row", "source", source, "line", line, "error", err)
			continue
		}
		imported++
	}

	batch := attendance.ImportBatch{
		ID:        uuid.NewString(),
		Source:    source,
		Checksum:  checksum,
		Imported:  imported,
		Skipped:   skipped,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.imports.Create(ctx, batch); err != nil {
		return attendance.ImportSummary{}, fmt.Errorf("failed to persist import marker: %w", err)
	}

	return attendance.ImportSummary{
		BatchID:  batch.ID,
		Source:   source,
		Imported: imported,
		Skipped:  skipped,
	}, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(importHeader) {
		return false
	}
	for i, col := range header {
		if strings.TrimSpace(col) != importHeader[i] {
			return false
		}
	}
	return true
}

func rowToRequest(row []string) (attendance.RecordPunchRequest, error) {
	if len(row) != len(importHeader) {
		return attendance.RecordPunchRequest{}, fmt.Errorf("expected %d columns, got %d", len(importHeader), len(row))
	}

	get := func(i int) string { return strings.TrimSpace(row[i]) }

	req := attendance.RecordPunchRequest{
		EmployeeID: get(0),
		Type:       attendance.PunchType(strings.ToUpper(get(1))),
	}

	if v := get(2); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return attendance.RecordPunchRequest{}, fmt.Errorf("invalid time %q: %w", v, err)
		}
		req.Timestamp = &ts
	}
	if v := get(3); v != "" {
		req.Policy = attendance.PunchPolicy(strings.ToUpper(v))
	}
	if v := get(4); v != "" {
		req.RoundingMode = attendance.RoundingMode(strings.ToLower(v))
	}
	if v := get(5); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return attendance.RecordPunchRequest{}, fmt.Errorf("invalid intervalMinutes %q: %w", v, err)
		}
		req.IntervalMinutes = n
	}
	if v := get(6); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return attendance.RecordPunchRequest{}, fmt.Errorf("invalid gracePeriodMinutes %q: %w", v, err)
		}
		req.GracePeriodMinutes = &n
	}
	if v := get(7); v != "" {
		expected, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return attendance.RecordPunchRequest{}, fmt.Errorf("invalid expectedCheckInTime %q: %w", v, err)
		}
		req.ExpectedCheckIn = &expected
	}
	if v := get(8); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return attendance.RecordPunchRequest{}, fmt.Errorf("invalid latenessThresholdMinutes %q: %w", v, err)
		}
		req.LatenessThresholdMinutes = n
	}
	if v := get(9); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return attendance.RecordPunchRequest{}, fmt.Errorf("invalid automaticDeductionMinutes %q: %w", v, err)
		}
		req.AutomaticDeductionMinutes = n
	}
	if v := get(10); v != "" {
		req.Location = &v
	}
	if v := get(11); v != "" {
		req.TerminalID = &v
	}
	if v := get(12); v != "" {
		req.DeviceID = &v
	}

	return req, nil
}
