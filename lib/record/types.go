package record

// Record is one row of a measurement table: a named transfer test, its
// repetition number, how many transfers were made, the payload size of each
// transfer and how long the whole batch took in seconds.
type Record struct {
	Name             string  `json:"name" yaml:"name"`
	Nr               int     `json:"nr" yaml:"nr"`
	Transfers        int     `json:"transfers" yaml:"transfers"`
	BytesPerTransfer int     `json:"bytesPerTransfer" yaml:"bytesPerTransfer"`
	TransferDuration float64 `json:"transferDuration" yaml:"transferDuration"`
}

// Table holds records in file order.
type Table []Record

// Group is the set of records sharing a name.
type Group struct {
	Name    string
	Records []Record
}

// Column names in file order.
const (
	ColName             = "name"
	ColNr               = "nr"
	ColTransfers        = "transfers"
	ColBytesPerTransfer = "bytesPerTransfer"
	ColTransferDuration = "transferDuration"
)

var Columns = []string{ColName, ColNr, ColTransfers, ColBytesPerTransfer, ColTransferDuration}
