package database

import (
	"fmt"

	"coin-alarm-telegram-bot/internal/types"
)

// GetEnabledAlarms fetches every alarm of the given kind that is enabled and
// whose owning chat or channel has alarm delivery switched on. Filtering
// happens here so disabled alarms never reach the market data fetch.
func (s *Store) GetEnabledAlarms(kind types.AlarmKind) ([]types.Alarm, error) {
	query := `
	SELECT a.AlarmID, a.ChatID, a.IsChannel, a.AlarmType, a.ExchangeID, a.BaseSymbol, a.QuoteSymbol, a.AlarmQuantity, a.IsEnabled
	FROM Alarm a
	LEFT JOIN Chat c ON a.IsChannel = 0 AND a.ChatID = c.ChatID
	LEFT JOIN Channel ch ON a.IsChannel = 1 AND a.ChatID = ch.ChannelID
	WHERE a.AlarmType = ? AND a.IsEnabled = 1
	  AND (c.AlarmOption = 1 OR ch.AlarmOption = 1);`

	rows, err := s.db.Query(query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled alarms: %w", err)
	}
	defer rows.Close()

	var alarms []types.Alarm
	for rows.Next() {
		var alarm types.Alarm
		if err := rows.Scan(
			&alarm.ID, &alarm.ChatID, &alarm.IsChannel, &alarm.Kind,
			&alarm.Instrument.Exchange, &alarm.Instrument.BaseSymbol, &alarm.Instrument.QuoteSymbol,
			&alarm.Threshold, &alarm.Enabled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alarm row: %w", err)
		}
		alarms = append(alarms, alarm)
	}
	return alarms, rows.Err()
}

// GetEnabledChats fetches all chats with alarm delivery switched on.
func (s *Store) GetEnabledChats() ([]types.Chat, error) {
	rows, err := s.db.Query(`SELECT ChatID, AlarmOption FROM Chat WHERE AlarmOption = 1;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []types.Chat
	for rows.Next() {
		var chat types.Chat
		if err := rows.Scan(&chat.ID, &chat.AlarmOption); err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// GetEnabledChannels fetches all channels with alarm delivery switched on.
func (s *Store) GetEnabledChannels() ([]types.Channel, error) {
	rows, err := s.db.Query(`SELECT ChannelID, ChannelName, ChatID, AlarmOption FROM Channel WHERE AlarmOption = 1;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	var channels []types.Channel
	for rows.Next() {
		var channel types.Channel
		if err := rows.Scan(&channel.ID, &channel.Name, &channel.ChatID, &channel.AlarmOption); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

// AddChat registers a chat.
func (s *Store) AddChat(chatID int64, alarmOption bool) error {
	_, err := s.db.Exec(`INSERT INTO Chat (ChatID, AlarmOption) VALUES (?, ?);`, chatID, alarmOption)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

// AddChannel registers a channel owned by chatID.
func (s *Store) AddChannel(channelID int64, name string, chatID int64, alarmOption bool) error {
	_, err := s.db.Exec(
		`INSERT INTO Channel (ChannelID, ChannelName, ChatID, AlarmOption) VALUES (?, ?, ?, ?);`,
		channelID, name, chatID, alarmOption)
	if err != nil {
		return fmt.Errorf("failed to insert channel: %w", err)
	}
	return nil
}

// AddAlarm saves an alarm rule and returns its id.
func (s *Store) AddAlarm(alarm types.Alarm) (int64, error) {
	res, err := s.db.Exec(`
	INSERT INTO Alarm (AlarmType, ChatID, ExchangeID, BaseSymbol, QuoteSymbol, AlarmQuantity, IsEnabled, IsChannel)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		string(alarm.Kind), alarm.ChatID,
		alarm.Instrument.Exchange, alarm.Instrument.BaseSymbol, alarm.Instrument.QuoteSymbol,
		alarm.Threshold, alarm.Enabled, alarm.IsChannel)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alarm: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted alarm id: %w", err)
	}
	return id, nil
}

// DeleteAlarm removes an alarm rule.
func (s *Store) DeleteAlarm(alarmID int64) error {
	_, err := s.db.Exec(`DELETE FROM Alarm WHERE AlarmID = ?;`, alarmID)
	if err != nil {
		return fmt.Errorf("failed to delete alarm: %w", err)
	}
	return nil
}

// SetAlarmEnabled toggles one alarm rule.
func (s *Store) SetAlarmEnabled(alarmID int64, enabled bool) error {
	_, err := s.db.Exec(`UPDATE Alarm SET IsEnabled = ? WHERE AlarmID = ?;`, enabled, alarmID)
	if err != nil {
		return fmt.Errorf("failed to update alarm: %w", err)
	}
	return nil
}

// SetChatAlarmOption toggles alarm delivery for a chat.
func (s *Store) SetChatAlarmOption(chatID int64, alarmOption bool) error {
	_, err := s.db.Exec(`UPDATE Chat SET AlarmOption = ? WHERE ChatID = ?;`, alarmOption, chatID)
	if err != nil {
		return fmt.Errorf("failed to update chat: %w", err)
	}
	return nil
}

// SetChannelAlarmOption toggles alarm delivery for a channel.
func (s *Store) SetChannelAlarmOption(channelID int64, alarmOption bool) error {
	_, err := s.db.Exec(`UPDATE Channel SET AlarmOption = ? WHERE ChannelID = ?;`, alarmOption, channelID)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	return nil
}
