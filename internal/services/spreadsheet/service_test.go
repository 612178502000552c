package spreadsheet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/mcoot/arise-roster/internal/dependencies/mocks"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/activity"
	"github.com/mcoot/arise-roster/internal/services/roster"
	"github.com/mcoot/arise-roster/internal/storage/memory"
	"github.com/mcoot/arise-roster/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage   *memory.Storage
	publisher *testutil.RecordingPublisher
	roster    *roster.Service
	service   *Service
	admin     *model.Session
	assistant *model.Session
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.publisher = &testutil.RecordingPublisher{}
	acts := activity.New(s.storage, clk, logger)
	s.roster = roster.New(s.storage, s.publisher, acts, clk, mocks.NewMockRandom(), logger)
	s.service = New(s.roster, acts, clk, logger)
	s.admin = &model.Session{UserID: "admin-1", Username: "root", Role: model.RoleAdmin}
	s.assistant = &model.Session{UserID: "asst-1", Username: "asstE", Role: model.RoleAssistant, Team: model.TeamEARIST}
	s.ctx = context.Background()
}

func (s *ServiceSuite) seed(name, belt, team string) *model.Player {
	p, err := s.roster.Create(s.ctx, s.admin, roster.PlayerInput{
		Name:     roster.StringPtr(name),
		BeltRank: roster.StringPtr(belt),
		Team:     roster.StringPtr(team),
	})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) workbook(rows ...[]any) io.Reader {
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		s.Require().NoError(err)
		s.Require().NoError(f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	s.Require().NoError(err)
	return buf
}

func (s *ServiceSuite) byName(name string) *model.Player {
	players, err := s.storage.FindPlayers(s.ctx, model.PlayerQuery{Name: name})
	s.Require().NoError(err)
	s.Require().Len(players, 1, "expected one player named %s", name)
	return players[0]
}

// Import tests

func (s *ServiceSuite) TestImportCreatesAndUpdates() {
	s.seed("Ana", "White", "EARIST")

	result, err := s.service.Import(s.ctx, s.admin, s.workbook(
		[]any{"Name", "Belt Rank", "Team", "Birthdate", "Notes"},
		[]any{"Ana", "Blue", "", "", "ignored"},
		[]any{"Ben", "White", "tondo", "2011-05-06", ""},
		[]any{"", "", "", "", "only notes"},
		[]any{"Cid", "", "", "", ""},
		[]any{"Dee", "Green", "", "not a date", ""},
	))
	s.Require().NoError(err)

	s.Equal(2, result.Imported)
	s.Equal(1, result.Updated)
	s.Equal(1, result.Errors)
	s.Equal([]string{"Row 5: Belt Rank is required"}, result.ErrorDetails)

	ana := s.byName("Ana")
	s.Equal("Blue", ana.BeltRank)
	s.Equal(model.TeamEARIST, ana.Team)

	ben := s.byName("Ben")
	s.Equal(model.TeamTONDO, ben.Team)
	s.Require().NotNil(ben.Birthdate)
	s.Equal(time.Date(2011, 5, 6, 0, 0, 0, 0, time.UTC), *ben.Birthdate)

	s.Nil(s.byName("Dee").Birthdate)
	players, _ := s.storage.FindPlayers(s.ctx, model.PlayerQuery{Name: "Cid"})
	s.Empty(players)
}

func (s *ServiceSuite) TestImportMatchesByNCCRef() {
	_, err := s.roster.Create(s.ctx, s.admin, roster.PlayerInput{
		Name: roster.StringPtr("Ana Old"), BeltRank: roster.StringPtr("White"), NCCRef: roster.StringPtr("R-1"),
	})
	s.Require().NoError(err)

	result, err := s.service.Import(s.ctx, s.admin, s.workbook(
		[]any{"NCC Reference", "Name", "Belt Rank"},
		[]any{"R-1", "Ana New", "Black"},
	))
	s.Require().NoError(err)
	s.Equal(1, result.Updated)
	s.Equal("Black", s.byName("Ana New").BeltRank)
}

func (s *ServiceSuite) TestImportNotProvidedKeepsExistingNCCRef() {
	_, err := s.roster.Create(s.ctx, s.admin, roster.PlayerInput{
		Name: roster.StringPtr("Ana Cruz"), BeltRank: roster.StringPtr("White"), NCCRef: roster.StringPtr("R-1"),
	})
	s.Require().NoError(err)

	for i := 0; i < 2; i++ {
		result, err := s.service.Import(s.ctx, s.admin, s.workbook(
			[]any{"Name", "Belt Rank", "NCC Reference"},
			[]any{"Ana Cruz", "Blue", "N/A"},
		))
		s.Require().NoError(err)
		s.Equal(1, result.Updated)
	}

	ana := s.byName("Ana Cruz")
	s.Equal("R-1", ana.NCCRef)
	s.Equal("Blue", ana.BeltRank)
}

func (s *ServiceSuite) TestImportNotProvidedDerivesRefForNewPlayer() {
	result, err := s.service.Import(s.ctx, s.admin, s.workbook(
		[]any{"Name", "Belt Rank", "NCC Reference"},
		[]any{"Ana Cruz", "Blue", "N/A"},
	))
	s.Require().NoError(err)
	s.Equal(1, result.Imported)
	s.False(model.IsNCCRefSentinel(s.byName("Ana Cruz").NCCRef))
}

func (s *ServiceSuite) TestImportMissingNameIsError() {
	result, err := s.service.Import(s.ctx, s.admin, s.workbook(
		[]any{"NCC Reference", "Name", "Belt Rank"},
		[]any{"R-1", "", "White"},
	))
	s.Require().NoError(err)
	s.Equal(1, result.Errors)
	s.Equal([]string{"Row 2: Name is required"}, result.ErrorDetails)
}

func (s *ServiceSuite) TestImportHeaderMatchingIgnoresCase() {
	result, err := s.service.Import(s.ctx, s.admin, s.workbook(
		[]any{" name ", "BELT RANK"},
		[]any{"Ana", "White"},
	))
	s.Require().NoError(err)
	s.Equal(1, result.Imported)
}

func (s *ServiceSuite) TestImportExcelSerialBirthdate() {
	result, err := s.service.Import(s.ctx, s.admin, s.workbook(
		[]any{"Name", "Belt Rank", "Birthdate"},
		[]any{"Ana", "White", time.Date(2010, 3, 4, 0, 0, 0, 0, time.UTC)},
	))
	s.Require().NoError(err)
	s.Equal(1, result.Imported)

	ana := s.byName("Ana")
	s.Require().NotNil(ana.Birthdate)
	s.Equal(time.Date(2010, 3, 4, 0, 0, 0, 0, time.UTC), *ana.Birthdate)
}

func (s *ServiceSuite) TestImportCapsErrorDetails() {
	rows := [][]any{{"Name", "Belt Rank"}}
	for i := 0; i < 12; i++ {
		rows = append(rows, []any{fmt.Sprintf("Player %d", i), ""})
	}

	result, err := s.service.Import(s.ctx, s.admin, s.workbook(rows...))
	s.Require().NoError(err)
	s.Equal(12, result.Errors)
	s.Len(result.ErrorDetails, MaxErrorDetails)
}

func (s *ServiceSuite) TestImportAppliesAssistantPolicyPerRow() {
	s.seed("Ben", "White", "TONDO")

	result, err := s.service.Import(s.ctx, s.assistant, s.workbook(
		[]any{"Name", "Belt Rank", "Team"},
		[]any{"Ana", "White", ""},
		[]any{"Ben", "Black", ""},
		[]any{"Cid", "White", "TONDO"},
		[]any{"Dee", "White", "MARS"},
	))
	s.Require().NoError(err)

	s.Equal(1, result.Imported)
	s.Equal(0, result.Updated)
	s.Equal(3, result.Errors)
	s.Require().Len(result.ErrorDetails, 3)
	s.Contains(result.ErrorDetails[0], "Row 3:")
	s.Contains(result.ErrorDetails[1], "Row 4:")
	s.Contains(result.ErrorDetails[2], "Row 5: team:")

	s.Equal(model.TeamEARIST, s.byName("Ana").Team)
	s.Equal("White", s.byName("Ben").BeltRank)
}

func (s *ServiceSuite) TestImportPublishesPerRowAndLogsOnce() {
	_, err := s.service.Import(s.ctx, s.admin, s.workbook(
		[]any{"Name", "Belt Rank"},
		[]any{"Ana", "White"},
		[]any{"Ben", "White"},
	))
	s.Require().NoError(err)

	s.Equal([]model.EventKind{model.EventPlayerCreated, model.EventPlayerCreated}, s.publisher.Kinds())
	entries, err := s.storage.RecentActivity(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("Imported players", entries[0].Activity)
	s.Equal("2 imported, 0 updated, 0 errors", entries[0].Details)
}

func (s *ServiceSuite) TestImportRequiresSession() {
	_, err := s.service.Import(s.ctx, nil, s.workbook([]any{"Name"}))
	s.ErrorIs(err, model.ErrAuthenticationRequired)
}

func (s *ServiceSuite) TestImportRejectsNonWorkbook() {
	_, err := s.service.Import(s.ctx, s.admin, bytes.NewReader([]byte("name,belt\nAna,White\n")))
	s.True(model.IsValidation(err))
}

// Export tests

func (s *ServiceSuite) readExport(wb *Workbook) [][]string {
	f, err := excelize.OpenReader(bytes.NewReader(wb.Data))
	s.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows("Players")
	s.Require().NoError(err)
	return rows
}

func (s *ServiceSuite) TestExport() {
	s.seed("Ben", "White", "TONDO")
	s.seed("Ana", "Blue", "EARIST")

	wb, err := s.service.Export(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal("players_export_2024-01-01.xlsx", wb.Filename)

	rows := s.readExport(wb)
	s.Require().Len(rows, 3)
	s.Equal("NCC Reference", rows[0][0])
	s.Equal("Created Date", rows[0][len(rows[0])-1])
	s.Equal("Ana", rows[1][1])
	s.Equal("Ben", rows[2][1])
	s.Equal("2024-01-01", rows[1][len(rows[1])-1])
}

func (s *ServiceSuite) TestExportScopedForAssistant() {
	s.seed("Ben", "White", "TONDO")
	s.seed("Ana", "Blue", "EARIST")

	wb, err := s.service.Export(s.ctx, s.assistant)
	s.Require().NoError(err)

	rows := s.readExport(wb)
	s.Require().Len(rows, 2)
	s.Equal("Ana", rows[1][1])
}

func (s *ServiceSuite) TestExportRequiresSession() {
	_, err := s.service.Export(s.ctx, nil)
	s.ErrorIs(err, model.ErrAuthenticationRequired)
}

func (s *ServiceSuite) TestExportImportRoundTrip() {
	s.seed("Ana", "Blue", "EARIST")
	s.seed("Ben", "White", "TONDO")
	wb, err := s.service.Export(s.ctx, s.admin)
	s.Require().NoError(err)

	result, err := s.service.Import(s.ctx, s.admin, bytes.NewReader(wb.Data))
	s.Require().NoError(err)
	s.Equal(0, result.Imported)
	s.Equal(2, result.Updated)
	s.Equal(0, result.Errors)
}

func TestCheckContentType(t *testing.T) {
	assert.NoError(t, CheckContentType(ContentTypeXLSX))
	assert.NoError(t, CheckContentType("application/vnd.ms-excel"))
	assert.True(t, model.IsValidation(CheckContentType("text/csv")))
	assert.True(t, model.IsValidation(CheckContentType("")))
}
