package parser

// Unnamed is reported as OriginalName when a link carries no tag.
const Unnamed = "unnamed"

// NotAvailable fills summary fields that are missing from a link.
const NotAvailable = "N/A"

// Record is the outcome of decoding and relabeling one share-link.
// It is built once by a codec and not modified afterwards.
type Record struct {
	Protocol Protocol
	Line     string // input line as received

	Host string
	Port string // textual, never validated numerically

	Tag          string // new tag written into ModifiedLink (empty for Telegram)
	OriginalName string
	Details      string // human readable protocol summary
	ModifiedLink string

	// Telegram is only set for MTProto proxy links.
	Telegram *TelegramProxy
}

// TelegramProxy holds the discrete fields of an MTProto proxy link.
type TelegramProxy struct {
	Server string
	Port   string
	Secret string
}

func nameOrUnnamed(name string) string {
	if name == "" {
		return Unnamed
	}
	return name
}
