package messages

import (
	"net/netip"

	"github.com/danmuck/rscwire/internal/protocol/chat"
	"github.com/danmuck/rscwire/internal/protocol/packet"
	"github.com/danmuck/rscwire/internal/protocol/schema"
	"github.com/danmuck/rscwire/internal/protocol/username"
)

// addingBits is the smallest adding-character entry in a region update.
const addingBits = 16 + 5 + 5 + 4 + 1

// clientDecoders read server messages on the client side.
var clientDecoders = map[string]schema.DecodeFunc{
	TypeBankClose:                  decodeEmpty,
	TypeBankOpen:                   decodeBankOpen,
	TypeBankUpdate:                 decodeBankUpdate,
	TypeCloseConnection:            decodeEmpty,
	TypeFriendList:                 decodeFriendList,
	TypeFriendMessage:              decodeFriendMessage,
	TypeFriendStatusChange:         decodeFriend,
	TypeGameSettings:               decodeGameSettings,
	TypeIgnoreList:                 decodeIgnoreList,
	TypeInventoryItemRemove:        decodeInventoryItemRemove,
	TypeInventoryItemUpdate:        decodeInventoryItemUpdate,
	TypeInventoryItems:             decodeInventoryItems,
	TypeLogoutDeny:                 decodeEmpty,
	TypeOptionList:                 decodeOptionList,
	TypeOptionListClose:            decodeEmpty,
	TypePlayerDied:                 decodeEmpty,
	TypePlayerStatExperienceUpdate: decodeExperienceUpdate,
	TypePlayerStatFatigue:          decodeFatigue,
	TypePlayerStatList:             decodePlayerStatList,
	TypePrivacySettings:            decodePrivacySettings,
	TypeRegionPlayers:              decodeRegionPlayers,
	TypeServerMessage:              decodeServerMessage,
	TypeServerMessageOnTop:         decodeServerMessage,
	TypeShopClose:                  decodeEmpty,
	TypeShopOpen:                   decodeShopOpen,
	TypeSleepClose:                 decodeEmpty,
	TypeSleepOpen:                  decodeSleepOpen,
	TypeSound:                      decodeSound,
	TypeSystemUpdate:               decodeSystemUpdate,
	TypeTeleportBubble:             decodeTeleportBubble,
	TypeTradeClose:                 decodeEmpty,
	TypeWelcome:                    decodeWelcome,
	TypeWorldInfo:                  decodeWorldInfo,
}

func getItem(p *packet.Packet) (Item, error) {
	id, err := p.GetShort()
	if err != nil {
		return Item{}, err
	}
	amount, err := p.GetStackInt()
	if err != nil {
		return Item{}, err
	}
	return Item{ID: id, Amount: amount}, nil
}

func decodeBankOpen(p *packet.Packet) (any, error) {
	n, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	maxItems, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	b := BankOpen{MaxItems: maxItems, Items: make([]Item, 0, n)}
	for range n {
		item, err := getItem(p)
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, item)
	}
	return b, nil
}

func decodeBankUpdate(p *packet.Packet) (any, error) {
	index, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	item, err := getItem(p)
	if err != nil {
		return nil, err
	}
	return BankUpdate{Index: index, ID: item.ID, Amount: item.Amount}, nil
}

func getFriend(p *packet.Packet) (Friend, error) {
	v, err := p.GetLong()
	if err != nil {
		return Friend{}, err
	}
	world, err := p.GetByte()
	if err != nil {
		return Friend{}, err
	}
	return Friend{Username: username.Decode(v), World: world}, nil
}

func decodeFriendList(p *packet.Packet) (any, error) {
	n, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	l := FriendList{Friends: make([]Friend, 0, n)}
	for range n {
		f, err := getFriend(p)
		if err != nil {
			return nil, err
		}
		l.Friends = append(l.Friends, f)
	}
	return l, nil
}

func decodeFriend(p *packet.Packet) (any, error) {
	f, err := getFriend(p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func decodeFriendMessage(p *packet.Packet) (any, error) {
	v, err := p.GetLong()
	if err != nil {
		return nil, err
	}
	id, err := p.GetInt()
	if err != nil {
		return nil, err
	}
	return FriendMessage{
		Username: username.Decode(v),
		ID:       id,
		Message:  chat.DecodeOrPlaceholder(p.GetRemaining()),
	}, nil
}

func decodeGameSettings(p *packet.Packet) (any, error) {
	var s GameSettings
	for _, dst := range []*bool{&s.CameraAuto, &s.OneMouseButton, &s.SoundOn} {
		v, err := getBool(p)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	return s, nil
}

func decodeIgnoreList(p *packet.Packet) (any, error) {
	n, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	l := IgnoreList{Usernames: make([]string, 0, n)}
	for range n {
		v, err := p.GetLong()
		if err != nil {
			return nil, err
		}
		l.Usernames = append(l.Usernames, username.Decode(v))
	}
	return l, nil
}

func decodeInventoryItemRemove(p *packet.Packet) (any, error) {
	v, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	return InventoryItemRemove{Index: v}, nil
}

func decodeInventoryItemUpdate(p *packet.Packet) (any, error) {
	index, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	item, err := getItem(p)
	if err != nil {
		return nil, err
	}
	return InventoryItemUpdate{Index: index, ID: item.ID, Amount: item.Amount}, nil
}

func decodeInventoryItems(p *packet.Packet) (any, error) {
	n, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	inv := InventoryItems{Items: make([]Item, 0, n)}
	for range n {
		item, err := getItem(p)
		if err != nil {
			return nil, err
		}
		if item.ID&equippedFlag != 0 {
			item.ID &^= equippedFlag
			item.Equipped = true
		}
		inv.Items = append(inv.Items, item)
	}
	return inv, nil
}

func decodeOptionList(p *packet.Packet) (any, error) {
	n, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	l := OptionList{Options: make([]string, 0, n)}
	for range n {
		size, err := p.GetByte()
		if err != nil {
			return nil, err
		}
		option, err := p.GetString(int(size))
		if err != nil {
			return nil, err
		}
		l.Options = append(l.Options, option)
	}
	return l, nil
}

func decodeExperienceUpdate(p *packet.Packet) (any, error) {
	index, err := p.GetByte()
	if err != nil {
		return nil, err
	}
	if index >= SkillCount {
		return nil, schema.Invalid(TypePlayerStatExperienceUpdate, "index", "skill %d out of range", index)
	}
	exp, err := p.GetInt()
	if err != nil {
		return nil, err
	}
	return ExperienceUpdate{Index: index, Experience: exp}, nil
}

func decodeFatigue(p *packet.Packet) (any, error) {
	v, err := p.GetShort()
	if err != nil {
		return nil, err
	}
	return Fatigue{Fatigue: v}, nil
}

func decodePlayerStatList(p *packet.Packet) (any, error) {
	var s PlayerStatList
	var err error
	for i := range s.Skills {
		if s.Skills[i].Current, err = p.GetByte(); err != nil {
			return nil, err
		}
	}
	for i := range s.Skills {
		if s.Skills[i].Level, err = p.GetByte(); err != nil {
			return nil, err
		}
	}
	for i := range s.Skills {
		if s.Skills[i].Experience, err = p.GetInt(); err != nil {
			return nil, err
		}
	}
	if s.QuestPoints, err = p.GetByte(); err != nil {
		return nil, err
	}
	return s, nil
}

// bitReader reads consecutive bit fields and keeps the first error.
type bitReader struct {
	p   *packet.Packet
	err error
}

func (b *bitReader) read(n int) uint32 {
	if b.err != nil {
		return 0
	}
	v, err := b.p.GetBits(n)
	b.err = err
	return v
}

func (b *bitReader) remaining() int {
	return b.p.Len()*8 - b.p.BitOffset()
}

func decodeRegionPlayers(p *packet.Packet) (any, error) {
	br := &bitReader{p: p}
	var r RegionPlayers
	r.Player.X = uint16(br.read(11))
	r.Player.Y = uint16(br.read(13))
	r.Player.Sprite = uint8(br.read(4))

	known := br.read(8)
	if br.err != nil {
		return nil, br.err
	}
	r.Known = make([]KnownCharacter, 0, known)
	for range known {
		var c KnownCharacter
		if br.read(1) == 1 {
			if br.read(1) == 0 {
				c.Moved, c.Sprite = true, uint8(br.read(3))
			} else if sprite := uint8(br.read(4)); sprite == 12 {
				c.Removing = true
			} else {
				c.SpriteChanged, c.Sprite = true, sprite
			}
		}
		if br.err != nil {
			return nil, br.err
		}
		r.Known = append(r.Known, c)
	}

	for br.remaining() >= addingBits {
		var c AddingCharacter
		c.Index = uint16(br.read(16))
		c.X = uint8(br.read(5))
		c.Y = uint8(br.read(5))
		c.Sprite = uint8(br.read(4))
		if br.read(1) == 1 {
			c.ID = uint16(br.read(10))
		}
		if br.err != nil {
			return nil, br.err
		}
		r.Adding = append(r.Adding, c)
	}
	return r, nil
}

func decodeServerMessage(p *packet.Packet) (any, error) {
	s, err := p.GetString(p.Remaining())
	if err != nil {
		return nil, err
	}
	return ServerMessage{Message: s}, nil
}

func decodeShopOpen(p *packet.Packet) (any, error) {
	head, err := p.GetBytes(4)
	if err != nil {
		return nil, err
	}
	s := ShopOpen{
		General:        head[1] != 0,
		SellMultiplier: head[2],
		BuyMultiplier:  head[3],
		Items:          make([]ShopItem, 0, head[0]),
	}
	for range head[0] {
		var item ShopItem
		if item.ID, err = p.GetShort(); err != nil {
			return nil, err
		}
		if item.Amount, err = p.GetShort(); err != nil {
			return nil, err
		}
		if item.Price, err = p.GetByte(); err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}
	return s, nil
}

func decodeSleepOpen(p *packet.Packet) (any, error) {
	return SleepOpen{Captcha: p.GetRemaining()}, nil
}

func decodeSound(p *packet.Packet) (any, error) {
	s, err := p.GetString(p.Remaining())
	if err != nil {
		return nil, err
	}
	return Sound{Name: s}, nil
}

func decodeSystemUpdate(p *packet.Packet) (any, error) {
	ticks, err := p.GetShort()
	if err != nil {
		return nil, err
	}
	return SystemUpdate{Seconds: ticks / updateTickRate}, nil
}

func decodeTeleportBubble(p *packet.Packet) (any, error) {
	b, err := p.GetBytes(3)
	if err != nil {
		return nil, err
	}
	return TeleportBubble{Type: b[0], X: b[1], Y: b[2]}, nil
}

func decodeWelcome(p *packet.Packet) (any, error) {
	var w Welcome
	ip, err := p.GetInt()
	if err != nil {
		return nil, err
	}
	if ip != 0 {
		w.LastIP = netip.AddrFrom4([4]byte{byte(ip >> 24), byte(ip >> 16), byte(ip >> 8), byte(ip)})
	}
	if w.LastLoginDays, err = p.GetShort(); err != nil {
		return nil, err
	}
	if w.RecoveryDays, err = p.GetByte(); err != nil {
		return nil, err
	}
	if w.UnreadMessages, err = p.GetShort(); err != nil {
		return nil, err
	}
	return w, nil
}

func decodeWorldInfo(p *packet.Packet) (any, error) {
	var w WorldInfo
	for _, dst := range []*uint16{&w.Index, &w.PlaneWidth, &w.PlaneHeight, &w.PlaneIndex, &w.PlaneMultiplier} {
		v, err := p.GetShort()
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	return w, nil
}
