package types

// Exchange identifies one of the supported trading venues. The values match
// the ExchangeID column seeded by the database schema.
type Exchange int64

const (
	ExchangeUpbit   Exchange = 1
	ExchangeBinance Exchange = 2
)

func (e Exchange) String() string {
	switch e {
	case ExchangeUpbit:
		return "Upbit"
	case ExchangeBinance:
		return "Binance"
	default:
		return "Unknown"
	}
}

// Instrument is a tradable base/quote symbol pair on a specific exchange.
type Instrument struct {
	Exchange    Exchange `json:"exchange"`
	BaseSymbol  string   `json:"base_symbol"`
	QuoteSymbol string   `json:"quote_symbol"`
}

// Pair returns the "BASE/QUOTE" display form of the instrument.
func (i Instrument) Pair() string {
	return i.BaseSymbol + "/" + i.QuoteSymbol
}

// AlarmKind discriminates alarm rules. The set is small and closed, so
// evaluation dispatches on the kind value rather than through an interface.
type AlarmKind string

const (
	TickAlarm  AlarmKind = "TickAlarm"
	WhaleAlarm AlarmKind = "WhaleAlarm"
)

// Alarm is one registered alert rule. ChatID is the owning chat id when
// IsChannel is false, otherwise the owning channel id; the two cases are
// mutually exclusive.
type Alarm struct {
	ID         int64      `json:"id"`
	ChatID     int64      `json:"chat_id"`
	IsChannel  bool       `json:"is_channel"`
	Kind       AlarmKind  `json:"kind"`
	Instrument Instrument `json:"instrument"`
	Threshold  float64    `json:"threshold"`
	Enabled    bool       `json:"enabled"`
}

// RecipientID resolves the numeric id the notification is delivered to.
func (a Alarm) RecipientID() int64 {
	return a.ChatID
}

// Chat is a direct conversation registered with the bot.
type Chat struct {
	ID          int64 `json:"id"`
	AlarmOption bool  `json:"alarm_option"`
}

// Channel is a broadcast channel managed from an owning chat.
type Channel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ChatID      int64  `json:"chat_id"`
	AlarmOption bool   `json:"alarm_option"`
}
