package messages

import (
	"strings"

	"github.com/danmuck/rscwire/internal/protocol/chat"
	"github.com/danmuck/rscwire/internal/protocol/packet"
	"github.com/danmuck/rscwire/internal/protocol/schema"
	"github.com/danmuck/rscwire/internal/protocol/username"
)

const (
	MagicBankDeposit  uint32 = 0x87654321
	MagicBankWithdraw uint32 = 0x12345678

	MaxOffence = 12
)

var (
	headSprites = map[uint8]bool{1: true, 4: true, 6: true, 7: true, 8: true}
	bodySprites = map[uint8]bool{2: true, 5: true}

	gameSettingNames = map[uint8]string{
		0: "cameraAuto",
		2: "oneMouseButton",
		3: "soundOn",
	}
)

// serverDecoders read client messages on the server side.
var serverDecoders = map[string]schema.DecodeFunc{
	TypeAppearance:           decodeAppearance,
	TypeBankClose:            decodeEmpty,
	TypeBankDeposit:          bankTransferDecoder(TypeBankDeposit, MagicBankDeposit),
	TypeBankWithdraw:         bankTransferDecoder(TypeBankWithdraw, MagicBankWithdraw),
	TypeChat:                 decodeChat,
	TypeChooseOption:         decodeChooseOption,
	TypeCloseConnection:      decodeEmpty,
	TypeCombatStyle:          decodeCombatStyle,
	TypeCommand:              decodeCommand,
	TypeFriendAdd:            decodeUsernameRef,
	TypeFriendRemove:         decodeUsernameRef,
	TypeGroundItemTake:       decodeGroundItem,
	TypeIgnoreAdd:            decodeUsernameRef,
	TypeIgnoreRemove:         decodeUsernameRef,
	TypeInventoryCommand:     decodeIndex,
	TypeInventoryDrop:        decodeIndex,
	TypeInventoryUnequip:     decodeIndex,
	TypeInventoryWear:        decodeIndex,
	TypeLogin:                decodeLogin,
	TypeLogout:               decodeEmpty,
	TypeNPCAttack:            decodeIndex,
	TypeNPCTalk:              decodeIndex,
	TypeObjectCommandOne:     decodeCoords,
	TypeObjectCommandTwo:     decodeCoords,
	TypePing:                 decodeEmpty,
	TypePlayerAttack:         decodeIndex,
	TypePlayerFollow:         decodeIndex,
	TypePlayerTrade:          decodeIndex,
	TypePrayerOff:            decodePrayer,
	TypePrayerOn:             decodePrayer,
	TypePrivateMessage:       decodePrivateMessage,
	TypeRegister:             decodeRegister,
	TypeReportAbuse:          decodeReportAbuse,
	TypeSession:              decodeSession,
	TypeSettingsGame:         decodeSettingsGame,
	TypeSettingsPrivacy:      decodePrivacySettings,
	TypeShopBuy:              decodeShopTrade,
	TypeShopClose:            decodeEmpty,
	TypeShopSell:             decodeShopTrade,
	TypeSleepWord:            decodeSleepWord,
	TypeTradeAccept:          decodeEmpty,
	TypeTradeDecline:         decodeEmpty,
	TypeWalk:                 decodeWalk,
	TypeWalkAction:           decodeWalk,
	TypeWallObjectCommandOne: decodeCoords,
	TypeWallObjectCommandTwo: decodeCoords,
}

func decodeAppearance(p *packet.Packet) (any, error) {
	if _, err := p.GetByte(); err != nil {
		return nil, err
	}
	var a Appearance
	head, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	a.HeadSprite = head + 1
	if !headSprites[a.HeadSprite] {
		return nil, schema.Invalid(TypeAppearance, "headSprite", "invalid sprite %d", a.HeadSprite)
	}
	body, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	a.BodySprite = body + 1
	if !bodySprites[a.BodySprite] {
		return nil, schema.Invalid(TypeAppearance, "bodySprite", "invalid sprite %d", a.BodySprite)
	}
	if _, err := p.GetByte(); err != nil {
		return nil, err
	}

	colours := []struct {
		field string
		max   uint8
		dst   *uint8
	}{
		{"hairColour", 9, &a.HairColour},
		{"topColour", 14, &a.TopColour},
		{"trouserColour", 14, &a.TrouserColour},
		{"skinColour", 4, &a.SkinColour},
	}
	for _, c := range colours {
		v, err := p.GetByte()
		if err != nil {
			return nil, err
		}
		if v > c.max {
			return nil, schema.Invalid(TypeAppearance, c.field, "value %d exceeds %d", v, c.max)
		}
		*c.dst = v
	}
	return a, nil
}

func bankTransferDecoder(msgType string, magic uint32) schema.DecodeFunc {
	return func(p *packet.Packet) (any, error) {
		id, err := p.GetShort()
		if err != nil {
			return nil, err
		}
		amount, err := p.GetShort()
		if err != nil {
			return nil, err
		}
		got, err := p.GetInt()
		if err != nil {
			return nil, err
		}
		if got != magic {
			return nil, schema.Invalid(msgType, "magic", "got %#x want %#x", got, magic)
		}
		return BankTransfer{ID: id, Amount: amount}, nil
	}
}

func decodeChat(p *packet.Packet) (any, error) {
	return Chat{Message: chat.DecodeOrPlaceholder(p.GetRemaining())}, nil
}

func decodeChooseOption(p *packet.Packet) (any, error) {
	v, err := p.GetByte()
	return ChooseOption{Option: v}, err
}

func decodeCombatStyle(p *packet.Packet) (any, error) {
	v, err := p.GetByte()
	return CombatStyle{Style: v}, err
}

func decodeCommand(p *packet.Packet) (any, error) {
	s, err := p.GetString(p.Remaining())
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, " ")
	return Command{Command: parts[0], Args: parts[1:]}, nil
}

func decodeUsernameRef(p *packet.Packet) (any, error) {
	v, err := p.GetLong()
	if err != nil {
		return nil, err
	}
	return UsernameRef{Username: username.Decode(v)}, nil
}

func decodeGroundItem(p *packet.Packet) (any, error) {
	var g GroundItem
	for _, dst := range []*uint16{&g.X, &g.Y, &g.ID} {
		v, err := p.GetShort()
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	return g, nil
}

func decodeIndex(p *packet.Packet) (any, error) {
	v, err := p.GetShort()
	if err != nil {
		return nil, err
	}
	return Index{Index: v}, nil
}

func decodeCoords(p *packet.Packet) (any, error) {
	x, err := p.GetShort()
	if err != nil {
		return nil, err
	}
	y, err := p.GetShort()
	if err != nil {
		return nil, err
	}
	return Coords{X: x, Y: y}, nil
}

func decodeLogin(p *packet.Packet) (any, error) {
	var l Login
	reconnecting, err := getBool(p)
	if err != nil {
		return nil, err
	}
	l.Reconnecting = reconnecting
	if l.Version, err = p.GetShort(); err != nil {
		return nil, err
	}
	// two bytes of client limits the server does not use
	if _, err := p.GetBytes(2); err != nil {
		return nil, err
	}
	for i := range l.Keys {
		if l.Keys[i], err = p.GetInt(); err != nil {
			return nil, err
		}
	}
	if l.UUID, err = p.GetInt(); err != nil {
		return nil, err
	}
	name, err := getFixedString(p, credentialWidth)
	if err != nil {
		return nil, err
	}
	l.Username = strings.ToLower(name)
	if l.Password, err = getFixedString(p, credentialWidth); err != nil {
		return nil, err
	}
	return l, nil
}

func decodePrayer(p *packet.Packet) (any, error) {
	v, err := p.GetByte()
	return Prayer{Index: v}, err
}

func decodePrivateMessage(p *packet.Packet) (any, error) {
	v, err := p.GetLong()
	if err != nil {
		return nil, err
	}
	return PrivateMessage{
		Username: username.Decode(v),
		Message:  chat.DecodeOrPlaceholder(p.GetRemaining()),
	}, nil
}

func decodeRegister(p *packet.Packet) (any, error) {
	var r Register
	var err error
	if r.Version, err = p.GetShort(); err != nil {
		return nil, err
	}
	name, err := getFixedString(p, credentialWidth)
	if err != nil {
		return nil, err
	}
	r.Username = strings.ToLower(name)
	if r.Password, err = getFixedString(p, credentialWidth); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeReportAbuse(p *packet.Packet) (any, error) {
	v, err := p.GetLong()
	if err != nil {
		return nil, err
	}
	offence, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	if offence > MaxOffence {
		return nil, schema.Invalid(TypeReportAbuse, "offence", "value %d exceeds %d", offence, MaxOffence)
	}
	mute, err := getBool(p)
	if err != nil {
		return nil, err
	}
	return ReportAbuse{Username: username.Decode(v), Offence: offence, Mute: mute}, nil
}

func decodeSession(p *packet.Packet) (any, error) {
	v, err := p.GetByte()
	return Session{UsernameToken: v}, err
}

func decodeSettingsGame(p *packet.Packet) (any, error) {
	index, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	name, ok := gameSettingNames[index]
	if !ok {
		return nil, schema.Invalid(TypeSettingsGame, "index", "unknown setting %d", index)
	}
	enabled, err := getBool(p)
	if err != nil {
		return nil, err
	}
	return GameSetting{Index: index, Name: name, Enabled: enabled}, nil
}

func decodePrivacySettings(p *packet.Packet) (any, error) {
	var s PrivacySettings
	for _, dst := range []*bool{&s.Chat, &s.PrivateChat, &s.Trade, &s.Duel} {
		v, err := getBool(p)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	return s, nil
}

func decodeShopTrade(p *packet.Packet) (any, error) {
	id, err := p.GetShort()
	if err != nil {
		return nil, err
	}
	price, err := p.GetInt()
	if err != nil {
		return nil, err
	}
	return ShopTrade{ID: id, Price: price}, nil
}

// decodeSleepWord returns a nil body when the client sends before the
// captcha is shown; those words are not null-terminated.
func decodeSleepWord(p *packet.Packet) (any, error) {
	raw := p.GetRemaining()
	if len(raw) == 0 || raw[len(raw)-1] != 0 {
		return nil, nil
	}
	if err := p.Rewind(len(raw)); err != nil {
		return nil, err
	}
	word, err := p.GetString(len(raw) - 1)
	if err != nil {
		return nil, err
	}
	return SleepWord{Word: word}, nil
}

func decodeWalk(p *packet.Packet) (any, error) {
	x, err := p.GetShort()
	if err != nil {
		return nil, err
	}
	y, err := p.GetShort()
	if err != nil {
		return nil, err
	}
	w := Walk{TargetX: x, TargetY: y}
	n := p.Remaining() / 2
	if n > 0 {
		w.Steps = make([]Step, 0, n)
	}
	for range n {
		dx, err := p.GetByte()
		if err != nil {
			return nil, err
		}
		dy, err := p.GetByte()
		if err != nil {
			return nil, err
		}
		w.Steps = append(w.Steps, Step{DeltaX: int8(dx), DeltaY: int8(dy)})
	}
	return w, nil
}
