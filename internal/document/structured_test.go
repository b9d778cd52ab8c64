package document

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFromCSV(t *testing.T) {
	data := []byte("region, amount, active\nwest, 10.5, yes\neast, , no\n")
	doc, err := FromCSV(data)
	require.NoError(t, err)

	require.Equal(t, []string{"region", "amount", "active"}, doc.Fields)
	require.Equal(t, 2, doc.RowCount)
	require.Len(t, doc.Preview, 2)

	require.Equal(t, "west", doc.FullData[0]["region"])
	require.Equal(t, 10.5, doc.FullData[0]["amount"])
	require.Nil(t, doc.FullData[1]["amount"])
}

func TestFromCSV_ShortRowsPadWithNil(t *testing.T) {
	doc, err := FromCSV([]byte("a,b,c\n1,2\n"))
	require.NoError(t, err)
	require.Equal(t, 1, doc.RowCount)
	require.Nil(t, doc.FullData[0]["c"])
}

func TestFromCSV_DuplicateHeadersKeepBothColumns(t *testing.T) {
	doc, err := FromCSV([]byte("region,amount,region\nwest,10,east\n"))
	require.NoError(t, err)

	require.Equal(t, []string{"region", "amount", "region_2"}, doc.Fields)
	require.Equal(t, "west", doc.FullData[0]["region"])
	require.Equal(t, "east", doc.FullData[0]["region_2"])
}

func TestFromCSV_Empty(t *testing.T) {
	doc, err := FromCSV(nil)
	require.NoError(t, err)
	require.True(t, doc.Empty())
}

func TestFromCSV_PreviewCapped(t *testing.T) {
	data := []byte("n\n1\n2\n3\n4\n5\n6\n7\n")
	doc, err := FromCSV(data)
	require.NoError(t, err)
	require.Equal(t, 7, doc.RowCount)
	require.Len(t, doc.Preview, previewRows)
	require.Len(t, doc.FullData, 7)
}

func TestFromXLSX_SkipsBannerRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	// A banner row with too few cells must not be mistaken for the header.
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Quarterly Report"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"city", "population", "country"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"Lyon", 520000, "France"}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{"Porto", 240000, "Portugal"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	doc, err := FromXLSX(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, []string{"city", "population", "country"}, doc.Fields)
	require.Equal(t, 2, doc.RowCount)
	require.Equal(t, float64(520000), doc.FullData[0]["population"])
}

func TestFromUpload_UnsupportedMIMEIsEmpty(t *testing.T) {
	doc, err := FromUpload([]byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	require.True(t, doc.Empty())
}
