package messages

import (
	"math"
	"math/rand/v2"

	"github.com/danmuck/rscwire/internal/protocol/chat"
	"github.com/danmuck/rscwire/internal/protocol/packet"
	"github.com/danmuck/rscwire/internal/protocol/schema"
	"github.com/danmuck/rscwire/internal/protocol/username"
)

const (
	DefaultBankSize     = 48
	DefaultRecoveryDays = 200

	equippedFlag   = 0x8000
	updateTickRate = 50
	maxKnown       = 0xff
)

// serverEncoders write server messages on the server side.
var serverEncoders = map[string]schema.EncodeFunc{
	TypeBankClose:                  encodeEmpty,
	TypeBankOpen:                   encoder(TypeBankOpen, encodeBankOpen),
	TypeBankUpdate:                 encoder(TypeBankUpdate, encodeBankUpdate),
	TypeCloseConnection:            encodeEmpty,
	TypeFriendList:                 encoder(TypeFriendList, encodeFriendList),
	TypeFriendMessage:              encoder(TypeFriendMessage, encodeFriendMessage),
	TypeFriendStatusChange:         encoder(TypeFriendStatusChange, encodeFriend),
	TypeGameSettings:               encoder(TypeGameSettings, encodeGameSettings),
	TypeIgnoreList:                 encoder(TypeIgnoreList, encodeIgnoreList),
	TypeInventoryItemRemove:        encoder(TypeInventoryItemRemove, encodeInventoryItemRemove),
	TypeInventoryItemUpdate:        encoder(TypeInventoryItemUpdate, encodeInventoryItemUpdate),
	TypeInventoryItems:             encoder(TypeInventoryItems, encodeInventoryItems),
	TypeLogoutDeny:                 encodeEmpty,
	TypeOptionList:                 encoder(TypeOptionList, encodeOptionList),
	TypeOptionListClose:            encodeEmpty,
	TypePlayerDied:                 encodeEmpty,
	TypePlayerStatExperienceUpdate: encoder(TypePlayerStatExperienceUpdate, encodeExperienceUpdate),
	TypePlayerStatFatigue:          encoder(TypePlayerStatFatigue, encodeFatigue),
	TypePlayerStatList:             encoder(TypePlayerStatList, encodePlayerStatList),
	TypePrivacySettings:            encoder(TypePrivacySettings, encodePrivacySettings),
	TypeRegionPlayers:              encoder(TypeRegionPlayers, encodeRegionPlayers),
	TypeServerMessage:              encoder(TypeServerMessage, encodeServerMessage),
	TypeServerMessageOnTop:         encoder(TypeServerMessageOnTop, encodeServerMessage),
	TypeShopClose:                  encodeEmpty,
	TypeShopOpen:                   encoder(TypeShopOpen, encodeShopOpen),
	TypeSleepClose:                 encodeEmpty,
	TypeSleepOpen:                  encoder(TypeSleepOpen, encodeSleepOpen),
	TypeSound:                      encoder(TypeSound, encodeSound),
	TypeSystemUpdate:               encoder(TypeSystemUpdate, encodeSystemUpdate),
	TypeTeleportBubble:             encoder(TypeTeleportBubble, encodeTeleportBubble),
	TypeTradeClose:                 encodeEmpty,
	TypeWelcome:                    encoder(TypeWelcome, encodeWelcome),
	TypeWorldInfo:                  encoder(TypeWorldInfo, encodeWorldInfo),
}

func encodeBankOpen(p *packet.Packet, b BankOpen) error {
	if err := putLengthCount(p, TypeBankOpen, "items", len(b.Items)); err != nil {
		return err
	}
	maxItems := b.MaxItems
	if maxItems == 0 {
		maxItems = DefaultBankSize
	}
	p.PutByte(maxItems)
	for _, item := range b.Items {
		p.PutShort(item.ID)
		p.PutStackInt(item.Amount)
	}
	return nil
}

func encodeBankUpdate(p *packet.Packet, b BankUpdate) error {
	p.PutByte(b.Index)
	p.PutShort(b.ID)
	p.PutStackInt(b.Amount)
	return nil
}

func encodeFriendList(p *packet.Packet, l FriendList) error {
	if err := putLengthCount(p, TypeFriendList, "friends", len(l.Friends)); err != nil {
		return err
	}
	for _, f := range l.Friends {
		p.PutLong(username.Encode(f.Username))
		p.PutByte(f.World)
	}
	return nil
}

func encodeFriend(p *packet.Packet, f Friend) error {
	p.PutLong(username.Encode(f.Username))
	p.PutByte(f.World)
	return nil
}

func encodeFriendMessage(p *packet.Packet, m FriendMessage) error {
	id := m.ID
	if id == 0 {
		id = rand.Uint32N(math.MaxInt32)
	}
	p.PutLong(username.Encode(m.Username))
	p.PutInt(id)
	p.PutBytes(chat.Encode(m.Message))
	return nil
}

func encodeGameSettings(p *packet.Packet, s GameSettings) error {
	p.PutByte(boolByte(s.CameraAuto))
	p.PutByte(boolByte(s.OneMouseButton))
	p.PutByte(boolByte(s.SoundOn))
	return nil
}

func encodeIgnoreList(p *packet.Packet, l IgnoreList) error {
	if err := putLengthCount(p, TypeIgnoreList, "usernames", len(l.Usernames)); err != nil {
		return err
	}
	for _, name := range l.Usernames {
		p.PutLong(username.Encode(name))
	}
	return nil
}

func encodeInventoryItemRemove(p *packet.Packet, r InventoryItemRemove) error {
	p.PutByte(r.Index)
	return nil
}

func encodeInventoryItemUpdate(p *packet.Packet, u InventoryItemUpdate) error {
	p.PutByte(u.Index)
	p.PutShort(u.ID)
	p.PutStackInt(u.Amount)
	return nil
}

func encodeInventoryItems(p *packet.Packet, inv InventoryItems) error {
	if err := putLengthCount(p, TypeInventoryItems, "items", len(inv.Items)); err != nil {
		return err
	}
	for _, item := range inv.Items {
		if item.ID >= equippedFlag {
			return schema.Invalid(TypeInventoryItems, "id", "item id %d collides with the equipped flag", item.ID)
		}
		id := item.ID
		if item.Equipped {
			id |= equippedFlag
		}
		p.PutShort(id)
		p.PutStackInt(item.Amount)
	}
	return nil
}

func encodeOptionList(p *packet.Packet, l OptionList) error {
	if err := putLengthCount(p, TypeOptionList, "options", len(l.Options)); err != nil {
		return err
	}
	for _, option := range l.Options {
		if err := putLengthCount(p, TypeOptionList, "option", len(option)); err != nil {
			return err
		}
		p.PutString(option)
	}
	return nil
}

func encodeExperienceUpdate(p *packet.Packet, u ExperienceUpdate) error {
	if u.Index >= SkillCount {
		return schema.Invalid(TypePlayerStatExperienceUpdate, "index", "skill %d out of range", u.Index)
	}
	p.PutByte(u.Index)
	p.PutInt(u.Experience)
	return nil
}

func encodeFatigue(p *packet.Packet, f Fatigue) error {
	p.PutShort(f.Fatigue)
	return nil
}

func encodePlayerStatList(p *packet.Packet, s PlayerStatList) error {
	for _, skill := range s.Skills {
		p.PutByte(skill.Current)
	}
	for _, skill := range s.Skills {
		p.PutByte(ExperienceToLevel(skill.Experience))
	}
	for _, skill := range s.Skills {
		p.PutInt(skill.Experience)
	}
	p.PutByte(s.QuestPoints)
	return nil
}

func encodePrivacySettings(p *packet.Packet, s PrivacySettings) error {
	p.PutBytes([]byte{boolByte(s.Chat), boolByte(s.PrivateChat), boolByte(s.Trade), boolByte(s.Duel)})
	return nil
}

// encodeRegionPlayers packs the local region update into bit fields: the
// player's own position, one delta per known character, then the characters
// entering view.
func encodeRegionPlayers(p *packet.Packet, r RegionPlayers) error {
	if len(r.Known) > maxKnown {
		return schema.Invalid(TypeRegionPlayers, "known", "%d entries exceeds %d", len(r.Known), maxKnown)
	}
	p.PutBits(uint32(r.Player.X), 11)
	p.PutBits(uint32(r.Player.Y), 13)
	p.PutBits(uint32(r.Player.Sprite), 4)

	p.PutBits(uint32(len(r.Known)), 8)
	for _, c := range r.Known {
		switch {
		case c.Removing:
			p.PutBits(1, 1)
			p.PutBits(1, 1)
			p.PutBits(12, 4)
		case c.Moved:
			p.PutBits(1, 1)
			p.PutBits(0, 1)
			p.PutBits(uint32(c.Sprite), 3)
		case c.SpriteChanged:
			p.PutBits(1, 1)
			p.PutBits(1, 1)
			p.PutBits(uint32(c.Sprite), 4)
		default:
			p.PutBits(0, 1)
		}
	}

	for _, c := range r.Adding {
		p.PutBits(uint32(c.Index), 16)
		p.PutBits(uint32(c.X), 5)
		p.PutBits(uint32(c.Y), 5)
		p.PutBits(uint32(c.Sprite), 4)
		if c.ID != 0 {
			p.PutBits(1, 1)
			p.PutBits(uint32(c.ID), 10)
		} else {
			p.PutBits(0, 1)
		}
	}
	return nil
}

func encodeServerMessage(p *packet.Packet, m ServerMessage) error {
	p.PutString(m.Message)
	return nil
}

func encodeShopOpen(p *packet.Packet, s ShopOpen) error {
	if err := putLengthCount(p, TypeShopOpen, "items", len(s.Items)); err != nil {
		return err
	}
	p.PutByte(boolByte(s.General))
	p.PutByte(s.SellMultiplier)
	p.PutByte(s.BuyMultiplier)
	for _, item := range s.Items {
		p.PutShort(item.ID)
		p.PutShort(item.Amount)
		p.PutByte(item.Price)
	}
	return nil
}

func encodeSleepOpen(p *packet.Packet, s SleepOpen) error {
	p.PutBytes(s.Captcha)
	return nil
}

func encodeSound(p *packet.Packet, s Sound) error {
	p.PutString(s.Name)
	return nil
}

func encodeSystemUpdate(p *packet.Packet, u SystemUpdate) error {
	ticks := uint32(u.Seconds) * updateTickRate
	if ticks > math.MaxUint16 {
		return schema.Invalid(TypeSystemUpdate, "seconds", "%d seconds does not fit the wire field", u.Seconds)
	}
	p.PutShort(uint16(ticks))
	return nil
}

func encodeTeleportBubble(p *packet.Packet, t TeleportBubble) error {
	p.PutBytes([]byte{t.Type, t.X, t.Y})
	return nil
}

func encodeWelcome(p *packet.Packet, w Welcome) error {
	var ip uint32
	if w.LastIP.IsValid() {
		addr := w.LastIP.Unmap()
		if !addr.Is4() {
			return schema.Invalid(TypeWelcome, "lastIP", "%s is not an IPv4 address", w.LastIP)
		}
		b := addr.As4()
		ip = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	}
	recovery := w.RecoveryDays
	if recovery == 0 {
		recovery = DefaultRecoveryDays
	}
	p.PutInt(ip)
	p.PutShort(w.LastLoginDays)
	p.PutByte(recovery)
	p.PutShort(w.UnreadMessages)
	return nil
}

func encodeWorldInfo(p *packet.Packet, w WorldInfo) error {
	p.PutShort(w.Index)
	p.PutShort(w.PlaneWidth)
	p.PutShort(w.PlaneHeight)
	p.PutShort(w.PlaneIndex)
	p.PutShort(w.PlaneMultiplier)
	return nil
}
