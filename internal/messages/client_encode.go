package messages

import (
	"strings"

	"github.com/danmuck/rscwire/internal/protocol/chat"
	"github.com/danmuck/rscwire/internal/protocol/packet"
	"github.com/danmuck/rscwire/internal/protocol/schema"
	"github.com/danmuck/rscwire/internal/protocol/username"
)

// clientEncoders write client messages on the client side. Each one
// produces exactly what the matching server decoder reads.
var clientEncoders = map[string]schema.EncodeFunc{
	TypeAppearance:           encoder(TypeAppearance, encodeAppearance),
	TypeBankClose:            encodeEmpty,
	TypeBankDeposit:          bankTransferEncoder(TypeBankDeposit, MagicBankDeposit),
	TypeBankWithdraw:         bankTransferEncoder(TypeBankWithdraw, MagicBankWithdraw),
	TypeChat:                 encoder(TypeChat, encodeChat),
	TypeChooseOption:         encoder(TypeChooseOption, encodeChooseOption),
	TypeCloseConnection:      encodeEmpty,
	TypeCombatStyle:          encoder(TypeCombatStyle, encodeCombatStyle),
	TypeCommand:              encoder(TypeCommand, encodeCommand),
	TypeFriendAdd:            encoder(TypeFriendAdd, encodeUsernameRef),
	TypeFriendRemove:         encoder(TypeFriendRemove, encodeUsernameRef),
	TypeGroundItemTake:       encoder(TypeGroundItemTake, encodeGroundItem),
	TypeIgnoreAdd:            encoder(TypeIgnoreAdd, encodeUsernameRef),
	TypeIgnoreRemove:         encoder(TypeIgnoreRemove, encodeUsernameRef),
	TypeInventoryCommand:     encoder(TypeInventoryCommand, encodeIndex),
	TypeInventoryDrop:        encoder(TypeInventoryDrop, encodeIndex),
	TypeInventoryUnequip:     encoder(TypeInventoryUnequip, encodeIndex),
	TypeInventoryWear:        encoder(TypeInventoryWear, encodeIndex),
	TypeLogin:                encoder(TypeLogin, encodeLogin),
	TypeLogout:               encodeEmpty,
	TypeNPCAttack:            encoder(TypeNPCAttack, encodeIndex),
	TypeNPCTalk:              encoder(TypeNPCTalk, encodeIndex),
	TypeObjectCommandOne:     encoder(TypeObjectCommandOne, encodeCoords),
	TypeObjectCommandTwo:     encoder(TypeObjectCommandTwo, encodeCoords),
	TypePing:                 encodeEmpty,
	TypePlayerAttack:         encoder(TypePlayerAttack, encodeIndex),
	TypePlayerFollow:         encoder(TypePlayerFollow, encodeIndex),
	TypePlayerTrade:          encoder(TypePlayerTrade, encodeIndex),
	TypePrayerOff:            encoder(TypePrayerOff, encodePrayer),
	TypePrayerOn:             encoder(TypePrayerOn, encodePrayer),
	TypePrivateMessage:       encoder(TypePrivateMessage, encodePrivateMessage),
	TypeRegister:             encoder(TypeRegister, encodeRegister),
	TypeReportAbuse:          encoder(TypeReportAbuse, encodeReportAbuse),
	TypeSession:              encoder(TypeSession, encodeSession),
	TypeSettingsGame:         encoder(TypeSettingsGame, encodeSettingsGame),
	TypeSettingsPrivacy:      encoder(TypeSettingsPrivacy, encodePrivacySettings),
	TypeShopBuy:              encoder(TypeShopBuy, encodeShopTrade),
	TypeShopClose:            encodeEmpty,
	TypeShopSell:             encoder(TypeShopSell, encodeShopTrade),
	TypeSleepWord:            encoder(TypeSleepWord, encodeSleepWord),
	TypeTradeAccept:          encodeEmpty,
	TypeTradeDecline:         encodeEmpty,
	TypeWalk:                 encoder(TypeWalk, encodeWalk),
	TypeWalkAction:           encoder(TypeWalkAction, encodeWalk),
	TypeWallObjectCommandOne: encoder(TypeWallObjectCommandOne, encodeCoords),
	TypeWallObjectCommandTwo: encoder(TypeWallObjectCommandTwo, encodeCoords),
}

func encodeAppearance(p *packet.Packet, a Appearance) error {
	if !headSprites[a.HeadSprite] {
		return schema.Invalid(TypeAppearance, "headSprite", "invalid sprite %d", a.HeadSprite)
	}
	if !bodySprites[a.BodySprite] {
		return schema.Invalid(TypeAppearance, "bodySprite", "invalid sprite %d", a.BodySprite)
	}
	p.PutByte(0)
	p.PutByte(a.HeadSprite - 1)
	p.PutByte(a.BodySprite - 1)
	p.PutByte(0)
	p.PutBytes([]byte{a.HairColour, a.TopColour, a.TrouserColour, a.SkinColour})
	return nil
}

func bankTransferEncoder(msgType string, magic uint32) schema.EncodeFunc {
	return encoder(msgType, func(p *packet.Packet, t BankTransfer) error {
		p.PutShort(t.ID)
		p.PutShort(t.Amount)
		p.PutInt(magic)
		return nil
	})
}

func encodeChat(p *packet.Packet, c Chat) error {
	p.PutBytes(chat.Encode(c.Message))
	return nil
}

func encodeChooseOption(p *packet.Packet, c ChooseOption) error {
	p.PutByte(c.Option)
	return nil
}

func encodeCombatStyle(p *packet.Packet, c CombatStyle) error {
	p.PutByte(c.Style)
	return nil
}

func encodeCommand(p *packet.Packet, c Command) error {
	if c.Command == "" || strings.Contains(c.Command, " ") {
		return schema.Invalid(TypeCommand, "command", "%q is not a single word", c.Command)
	}
	p.PutString(strings.Join(append([]string{c.Command}, c.Args...), " "))
	return nil
}

func encodeUsernameRef(p *packet.Packet, u UsernameRef) error {
	p.PutLong(username.Encode(u.Username))
	return nil
}

func encodeGroundItem(p *packet.Packet, g GroundItem) error {
	p.PutShort(g.X)
	p.PutShort(g.Y)
	p.PutShort(g.ID)
	return nil
}

func encodeIndex(p *packet.Packet, i Index) error {
	p.PutShort(i.Index)
	return nil
}

func encodeCoords(p *packet.Packet, c Coords) error {
	p.PutShort(c.X)
	p.PutShort(c.Y)
	return nil
}

func encodeLogin(p *packet.Packet, l Login) error {
	p.PutByte(boolByte(l.Reconnecting))
	p.PutShort(l.Version)
	p.PutBytes([]byte{0, 0})
	for _, k := range l.Keys {
		p.PutInt(k)
	}
	p.PutInt(l.UUID)
	if err := putFixedString(p, TypeLogin, "username", l.Username, credentialWidth); err != nil {
		return err
	}
	return putFixedString(p, TypeLogin, "password", l.Password, credentialWidth)
}

func encodePrayer(p *packet.Packet, pr Prayer) error {
	p.PutByte(pr.Index)
	return nil
}

func encodePrivateMessage(p *packet.Packet, m PrivateMessage) error {
	p.PutLong(username.Encode(m.Username))
	p.PutBytes(chat.Encode(m.Message))
	return nil
}

func encodeRegister(p *packet.Packet, r Register) error {
	p.PutShort(r.Version)
	if err := putFixedString(p, TypeRegister, "username", r.Username, credentialWidth); err != nil {
		return err
	}
	return putFixedString(p, TypeRegister, "password", r.Password, credentialWidth)
}

func encodeReportAbuse(p *packet.Packet, r ReportAbuse) error {
	if r.Offence > MaxOffence {
		return schema.Invalid(TypeReportAbuse, "offence", "value %d exceeds %d", r.Offence, MaxOffence)
	}
	p.PutLong(username.Encode(r.Username))
	p.PutByte(r.Offence)
	p.PutByte(boolByte(r.Mute))
	return nil
}

func encodeSession(p *packet.Packet, s Session) error {
	p.PutByte(s.UsernameToken)
	return nil
}

func encodeSettingsGame(p *packet.Packet, s GameSetting) error {
	if _, ok := gameSettingNames[s.Index]; !ok {
		return schema.Invalid(TypeSettingsGame, "index", "unknown setting %d", s.Index)
	}
	p.PutByte(s.Index)
	p.PutByte(boolByte(s.Enabled))
	return nil
}

func encodeShopTrade(p *packet.Packet, t ShopTrade) error {
	p.PutShort(t.ID)
	p.PutInt(t.Price)
	return nil
}

func encodeSleepWord(p *packet.Packet, s SleepWord) error {
	p.PutString(s.Word)
	p.PutByte(0)
	return nil
}

func encodeWalk(p *packet.Packet, w Walk) error {
	p.PutShort(w.TargetX)
	p.PutShort(w.TargetY)
	for _, s := range w.Steps {
		p.PutByte(uint8(s.DeltaX))
		p.PutByte(uint8(s.DeltaY))
	}
	return nil
}
