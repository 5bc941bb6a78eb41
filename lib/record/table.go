package record

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// Extractor returns one numeric column of a record.
type Extractor func(Record) float64

// Column resolves a numeric column by name.
func Column(name string) (Extractor, error) {
	switch name {
	case ColNr:
		return func(r Record) float64 { return float64(r.Nr) }, nil
	case ColTransfers:
		return func(r Record) float64 { return float64(r.Transfers) }, nil
	case ColBytesPerTransfer:
		return func(r Record) float64 { return float64(r.BytesPerTransfer) }, nil
	case ColTransferDuration:
		return func(r Record) float64 { return r.TransferDuration }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// GroupByName partitions the table by name. Groups come out in order of
// first appearance and keep file order inside.
func GroupByName(t Table) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, rec := range t {
		i, ok := index[rec.Name]
		if !ok {
			i = len(groups)
			index[rec.Name] = i
			groups = append(groups, Group{Name: rec.Name})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}

	return groups
}

func (g Group) Values(ex Extractor) []float64 {
	values := make([]float64, len(g.Records))
	for i, rec := range g.Records {
		values[i] = ex(rec)
	}
	return values
}

// Write renders the table in the format Parse reads, with a header comment.
func Write(w io.Writer, t Table) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "# %s\t%s\t%s\t%s\t%s\t\n", ColName, ColNr, ColTransfers, ColBytesPerTransfer, ColTransferDuration)
	for _, rec := range t {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n",
			rec.Name, rec.Nr, rec.Transfers, rec.BytesPerTransfer,
			strconv.FormatFloat(rec.TransferDuration, 'e', -1, 64))
	}

	return tw.Flush()
}
