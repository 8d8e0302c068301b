package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"optimise-growth-tools/internal/models"
)

var csvHeader = []string{
	"Keyword", "Position", "Search Volume", "Opportunity",
	"Location", "Website", "Last Updated", "Snapshot Labels",
}

// WriteKeywordCSV writes the current keyword set as CSV. The final column
// joins the labels of every snapshot referencing that keyword id.
func WriteKeywordCSV(w io.Writer, keywords []models.KeywordWithProject, snapshots []models.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, k := range keywords {
		position := "Not Found"
		if k.Position != nil {
			position = strconv.Itoa(*k.Position)
		}
		location := k.Location
		if location == "" {
			location = "Global"
		}
		record := []string{
			k.Keyword.Keyword,
			position,
			strconv.Itoa(k.SearchVolume),
			k.Opportunity,
			location,
			k.Project.Website,
			k.LastUpdated.UTC().Format("2006-01-02T15:04:05.000Z"),
			snapshotLabels(snapshots, k.ID),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func snapshotLabels(snapshots []models.Snapshot, keywordID int) string {
	var labels []string
	for _, s := range snapshots {
		for _, id := range s.KeywordIDs {
			if id == keywordID {
				labels = append(labels, s.Label)
				break
			}
		}
	}
	return strings.Join(labels, "; ")
}

// ReadKeywordList reads keywords from a CSV (expects a "keyword" header
// column) or a plain newline-delimited file. Lines are trimmed and empties
// dropped.
func ReadKeywordList(path string) ([]string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return readCSV(path)
	}
	return readLines(path)
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}
	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), "keyword") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, errors.New("csv must contain a 'keyword' header column")
	}
	var out []string
	for _, row := range rows[1:] {
		if col < len(row) {
			kw := strings.TrimSpace(row[col])
			if kw != "" {
				out = append(out, kw)
			}
		}
	}
	return out, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no keywords found")
	}
	return out, nil
}
