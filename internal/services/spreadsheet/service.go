// Package spreadsheet imports and exports the roster as xlsx workbooks.
package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mcoot/arise-roster/internal/dependencies/clock"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/policy"
	"github.com/mcoot/arise-roster/internal/services/activity"
	"github.com/mcoot/arise-roster/internal/services/roster"
)

const (
	// MaxUploadSize is the largest workbook accepted for import
	MaxUploadSize = 10 << 20

	// MaxErrorDetails caps the row messages returned from an import
	MaxErrorDetails = 10

	// ContentTypeXLSX is the media type of exported workbooks
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	contentTypeXLS = "application/vnd.ms-excel"
	sheetName      = "Players"
)

// Roster is the subset of the roster service the reconciler drives
type Roster interface {
	List(ctx context.Context, session *model.Session) ([]*model.Player, error)
	Match(ctx context.Context, name, nccRef string) (*model.Player, error)
	Create(ctx context.Context, session *model.Session, in roster.PlayerInput, opts ...roster.Option) (*model.Player, error)
	Update(ctx context.Context, session *model.Session, id model.PlayerID, in roster.PlayerInput, opts ...roster.Option) (*model.Player, error)
}

// ImportResult is the tally of an import. Counts cover every row even when
// ErrorDetails is truncated.
type ImportResult struct {
	Imported     int      `json:"imported"`
	Updated      int      `json:"updated"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails"`
}

// Workbook is a rendered export
type Workbook struct {
	Filename string
	Data     []byte
}

// Service reconciles uploaded workbooks against the roster and renders
// exports
type Service struct {
	roster   Roster
	activity *activity.Service
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a new spreadsheet Service
func New(roster Roster, activity *activity.Service, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		roster:   roster,
		activity: activity,
		clock:    clock,
		logger:   logger,
	}
}

// CheckContentType accepts the spreadsheet media types allowed for upload
func CheckContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && (mediaType == ContentTypeXLSX || mediaType == contentTypeXLS) {
		return nil
	}
	return model.NewValidationError("excelFile", "invalid file type, only Excel files are allowed")
}

// Import reads the first worksheet of an xlsx workbook and creates or
// updates one player per data row. Each row is authorized as the create or
// update it turns into; rows that fail are counted and the batch continues.
func (s *Service) Import(ctx context.Context, session *model.Session, r io.Reader) (*ImportResult, error) {
	if session == nil {
		return nil, model.ErrAuthenticationRequired
	}
	if d := policy.Decide(session.Role, session.Team, policy.OpRosterImport, nil); !d.Allowed() {
		return nil, d.Err
	}

	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, model.NewValidationError("excelFile", "could not read workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, model.NewValidationError("excelFile", "no worksheet found in workbook")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading worksheet: %w", err)
	}

	result := &ImportResult{ErrorDetails: []string{}}
	if len(rows) == 0 {
		return result, nil
	}

	header := headerIndex(rows[0])
	for i, cells := range rows[1:] {
		rowNumber := i + 2
		outcome, err := s.importRow(ctx, session, rowNumber, header, cells)
		switch {
		case err != nil:
			result.Errors++
			if len(result.ErrorDetails) < MaxErrorDetails {
				result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("Row %d: %s", rowNumber, rowMessage(err)))
			}
			s.logger.Warn("import row rejected",
				slog.Int("row", rowNumber),
				slog.String("error", err.Error()),
			)
		case outcome == rowCreated:
			result.Imported++
		case outcome == rowUpdated:
			result.Updated++
		}
	}

	s.logger.Info("roster import completed",
		slog.String("username", session.Username),
		slog.Int("imported", result.Imported),
		slog.Int("updated", result.Updated),
		slog.Int("errors", result.Errors),
	)
	s.activity.RecordQuietly(ctx, session, "Imported players",
		fmt.Sprintf("%d imported, %d updated, %d errors", result.Imported, result.Updated, result.Errors))
	return result, nil
}

type rowOutcome int

const (
	rowSkipped rowOutcome = iota
	rowCreated
	rowUpdated
)

func (s *Service) importRow(ctx context.Context, session *model.Session, rowNumber int, header map[int]column, cells []string) (rowOutcome, error) {
	var in roster.PlayerInput
	for i, raw := range cells {
		c, ok := header[i]
		if !ok {
			continue
		}
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		c.read(&in, value)
	}

	name, nccRef := deref(in.Name), deref(in.NCCRef)
	if name == "" && nccRef == "" {
		return rowSkipped, nil
	}
	if name == "" {
		return rowSkipped, model.NewValidationError("", "Name is required")
	}
	if deref(in.BeltRank) == "" {
		return rowSkipped, model.NewValidationError("", "Belt Rank is required")
	}

	if in.Birthdate != nil {
		date, ok := parseCellDate(*in.Birthdate)
		if ok {
			in.Birthdate = &date
		} else {
			s.logger.Warn("ignoring unparseable birthdate",
				slog.Int("row", rowNumber),
				slog.String("value", *in.Birthdate),
			)
			in.Birthdate = nil
		}
	}

	existing, err := s.roster.Match(ctx, name, nccRef)
	switch {
	case err == nil:
		if keepsNCCRef(existing, nccRef) {
			in.NCCRef = nil
		}
		if _, err := s.roster.Update(ctx, session, existing.ID, in, roster.WithoutActivity()); err != nil {
			return rowSkipped, err
		}
		return rowUpdated, nil
	case errors.Is(err, model.ErrPlayerNotFound):
		if _, err := s.roster.Create(ctx, session, in, roster.WithoutActivity()); err != nil {
			return rowSkipped, err
		}
		return rowCreated, nil
	default:
		return rowSkipped, err
	}
}

// keepsNCCRef reports whether a blank or "N/A" cell should leave the
// matched player's real reference alone
func keepsNCCRef(existing *model.Player, cell string) bool {
	if strings.TrimSpace(cell) != "" && !model.IsNCCRefSentinel(cell) {
		return false
	}
	return existing.NCCRef != "" && !model.IsNCCRefSentinel(existing.NCCRef)
}

// parseCellDate accepts a date string or an Excel serial day number and
// returns it as YYYY-MM-DD
func parseCellDate(value string) (string, bool) {
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", false
		}
		return t.Format("2006-01-02"), true
	}
	t, err := model.ParseDate(value)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// rowMessage hides internal failures behind a generic message
func rowMessage(err error) string {
	if model.IsValidation(err) || model.IsForbidden(err) {
		return err.Error()
	}
	return "could not save row"
}

// Export renders the roster visible to the session, sorted by name
func (s *Service) Export(ctx context.Context, session *model.Session) (*Workbook, error) {
	if session == nil {
		return nil, model.ErrAuthenticationRequired
	}
	if d := policy.Decide(session.Role, session.Team, policy.OpRosterExport, nil); !d.Allowed() {
		return nil, d.Err
	}

	players, err := s.roster.List(ctx, session)
	if err != nil {
		return nil, err
	}

	data, err := render(players)
	if err != nil {
		return nil, fmt.Errorf("rendering workbook: %w", err)
	}

	now := s.clock.Now()
	s.logger.Info("roster exported",
		slog.String("username", session.Username),
		slog.Int("players", len(players)),
	)
	s.activity.RecordQuietly(ctx, session, "Exported players", fmt.Sprintf("%d players", len(players)))
	return &Workbook{
		Filename: fmt.Sprintf("players_export_%s.xlsx", now.Format("2006-01-02")),
		Data:     data,
	}, nil
}

func render(players []*model.Player) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	header := make([]any, 0, len(columns)+1)
	for _, c := range columns {
		header = append(header, c.header)
	}
	header = append(header, createdColumn)
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6FA"}},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, style); err != nil {
		return nil, err
	}

	for i, c := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, name, name, c.width); err != nil {
			return nil, err
		}
	}

	for i, p := range players {
		row := make([]any, 0, len(columns)+1)
		for _, c := range columns {
			row = append(row, c.write(p))
		}
		row = append(row, p.CreatedAt.Format("2006-01-02"))
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
