package extract

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/sportsref-scraper/internal/logger"
	"github.com/pfrederiksen/sportsref-scraper/internal/table"
)

func values(tbl *table.Table, row int) []string {
	out := make([]string, len(tbl.Columns))
	for i, c := range tbl.Rows[row] {
		out[i] = c.String()
	}
	return out
}

func TestExtract_VisibleTable(t *testing.T) {
	markup := `
		<html><body>
			<table id="poll">
				<tr><th>Rk</th><th>School</th></tr>
				<tr><td>1</td><td> South Carolina </td></tr>
				<tr><td></td><td>  </td></tr>
				<tr><td>2</td><td>UConn</td></tr>
			</table>
		</body></html>`

	tables, stats, err := New(logger.NewMetrics()).ExtractWithStats(markup)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, SourceDirect, stats.Source)
	assert.Equal(t, 0, stats.CommentsScanned)

	tbl := tables[0]
	assert.Equal(t, "poll", tbl.ID)
	assert.Equal(t, []string{"Rk", "School"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"1", "South Carolina"}, values(tbl, 0))
	assert.Equal(t, []string{"2", "UConn"}, values(tbl, 1))
}

func TestExtract_CommentFallback(t *testing.T) {
	markup := `
		<html><body>
			<div class="placeholder"></div>
			<!--
			<table id="standings_sec">
				<thead><tr><th>School</th><th>W</th></tr></thead>
				<tbody>
					<tr><td>LSU</td><td>12</td></tr>
					<tr><td>Texas</td><td>11</td></tr>
				</tbody>
			</table>
			-->
			<!-- <table class="broken"> nothing to see here -->
			<!-- not a table at all -->
		</body></html>`

	m := logger.NewMetrics()
	tables, stats, err := New(m).ExtractWithStats(markup)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].Len())
	assert.Equal(t, "standings_sec", tables[0].ID)
	assert.Equal(t, SourceComments, stats.Source)
	assert.Equal(t, 2, stats.CommentsScanned)
	assert.Equal(t, 1, stats.CommentsSkipped)
	assert.Equal(t, int64(1), m.Counter("extract.comments_skipped"))
}

func TestExtract_NoTables(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"empty document", ``},
		{"plain page", `<html><body><p>No standings yet</p><!-- comment --></body></html>`},
		{"only malformed comment", `<html><body><!-- <table>oops --></body></html>`},
		{"table without rows", `<html><body><table><caption>Empty</caption></table></body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := New(logger.NewMetrics()).Extract(tt.markup)

			assert.Nil(t, tables)
			assert.True(t, errors.Is(err, ErrNoTablesFound), "error = %v, want ErrNoTablesFound", err)
		})
	}
}

func TestExtract_DirectTakesPrecedence(t *testing.T) {
	markup := `
		<table id="visible"><tr><th>A</th></tr><tr><td>1</td></tr></table>
		<!-- <table id="hidden"><tr><th>B</th></tr><tr><td>2</td></tr></table> -->`

	tables, stats, err := New(logger.NewMetrics()).ExtractWithStats(markup)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "visible", tables[0].ID)
	assert.Equal(t, SourceDirect, stats.Source)
	assert.Equal(t, 0, stats.CommentsScanned)
}

func TestExtract_CommentOrder(t *testing.T) {
	markup := `
		<!-- <table id="first"><tr><th>A</th></tr><tr><td>1</td></tr></table>
		     <table id="second"><tr><th>A</th></tr><tr><td>2</td></tr></table> -->
		<p>between</p>
		<!-- <TABLE id="third"><tr><th>A</th></tr><tr><td>3</td></tr></TABLE> -->`

	tables, err := New(logger.NewMetrics()).Extract(markup)

	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, "first", tables[0].ID)
	assert.Equal(t, "second", tables[1].ID)
	assert.Equal(t, "third", tables[2].ID)
}

func TestExtract_EmptyTableKept(t *testing.T) {
	markup := `<table><thead><tr><th>School</th></tr></thead><tbody><tr><td> </td></tr></tbody></table>`

	tables, err := New(logger.NewMetrics()).Extract(markup)

	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, 0, tables[0].Len())
	assert.Equal(t, []string{"School"}, tables[0].Columns)
}

func TestExtract_CountsTables(t *testing.T) {
	markup := `
		<table><tr><th>A</th></tr><tr><td>1</td></tr></table>
		<table><tr><th>B</th></tr><tr><td>2</td></tr></table>`

	m := logger.NewMetrics()
	_, stats, err := New(m).ExtractWithStats(markup)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Tables)
	assert.Equal(t, int64(2), m.Counter("extract.tables"))
}

func TestExtract_CountsTruncatedRows(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		source Source
	}{
		{
			name:   "direct",
			markup: `<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td><td>3</td></tr></table>`,
			source: SourceDirect,
		},
		{
			name:   "comment",
			markup: `<div><!-- <table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td><td>3</td></tr></table> --></div>`,
			source: SourceComments,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			previous := logger.SetDefault(logger.New(logger.LevelDebug, &logs))
			defer logger.SetDefault(previous)

			m := logger.NewMetrics()
			tables, stats, err := New(m).ExtractWithStats(tt.markup)

			require.NoError(t, err)
			require.Len(t, tables, 1)
			assert.Equal(t, []string{"1", "2"}, values(tables[0], 0))
			assert.Equal(t, tt.source, stats.Source)
			assert.Equal(t, 1, stats.RowsTruncated)
			assert.Equal(t, int64(1), m.Counter("extract.rows_truncated"))
			assert.Contains(t, logs.String(), "Truncated rows wider than their header")
		})
	}
}

func TestExtract_NoTruncation(t *testing.T) {
	m := logger.NewMetrics()
	_, stats, err := New(m).ExtractWithStats(`<table><tr><th>A</th></tr><tr><td>1</td></tr></table>`)

	require.NoError(t, err)
	assert.Zero(t, stats.RowsTruncated)
	assert.Zero(t, m.Counter("extract.rows_truncated"))
}

func TestExtract_PollsFixture(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/polls.html")
	require.NoError(t, err)

	tables, stats, err := New(logger.NewMetrics()).ExtractWithStats(string(data))

	require.NoError(t, err)
	assert.Equal(t, SourceDirect, stats.Source)
	require.Len(t, tables, 1)

	tbl := tables[0]
	assert.Equal(t, "ap-polls", tbl.ID)
	assert.Equal(t, "AP Poll Table", tbl.Caption)
	assert.Equal(t, []string{"School", "Conf", "Pre", "1", "Final"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"South Carolina", "SEC", "1", "1", "2"}, values(tbl, 0))
	assert.Equal(t, []string{"UConn", "Big East", "2", "2", "1"}, values(tbl, 1))
	assert.Equal(t, []string{"UCLA", "Big Ten", "3", "", "3"}, values(tbl, 2))
	assert.Equal(t, table.Missing, tbl.Rows[2][3].Kind)
	assert.Equal(t, table.Number, tbl.Rows[0][4].Kind)
}

func TestExtract_StandingsFixture(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/standings.html")
	require.NoError(t, err)

	tables, stats, err := New(logger.NewMetrics()).ExtractWithStats(string(data))

	require.NoError(t, err)
	assert.Equal(t, SourceComments, stats.Source)
	assert.Equal(t, 3, stats.CommentsScanned)
	assert.Equal(t, 1, stats.CommentsSkipped)
	require.Len(t, tables, 2)

	acc, bigEast := tables[0], tables[1]
	assert.Equal(t, "standings_acc", acc.ID)
	assert.Equal(t, "standings_big-east", bigEast.ID)
	assert.Equal(t, []string{"Rk", "School", "W", "L", "W-L%"}, acc.Columns)
	assert.Equal(t, acc.Columns, bigEast.Columns)
	assert.Equal(t, 2, acc.Len())
	require.Equal(t, 3, bigEast.Len())
	assert.Equal(t, []string{"3", "Villanova", "12", "6", ".667"}, values(bigEast, 2))
}
