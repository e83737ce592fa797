package messages

import "net/netip"

// Login is sent once per connection before any game traffic.
type Login struct {
	Reconnecting bool
	Version      uint16
	Keys         [4]uint32
	UUID         uint32
	Username     string
	Password     string
}

type Register struct {
	Version  uint16
	Username string
	Password string
}

type Session struct {
	UsernameToken uint8
}

type Chat struct {
	Message string
}

type Command struct {
	Command string
	Args    []string
}

type PrivateMessage struct {
	Username string
	Message  string
}

// UsernameRef is the body of the friend and ignore list edits.
type UsernameRef struct {
	Username string
}

type Appearance struct {
	HeadSprite    uint8
	BodySprite    uint8
	HairColour    uint8
	TopColour     uint8
	TrouserColour uint8
	SkinColour    uint8
}

// BankTransfer is a deposit or withdrawal of Amount of item ID.
type BankTransfer struct {
	ID     uint16
	Amount uint16
}

type Step struct {
	DeltaX int8
	DeltaY int8
}

// Walk carries an absolute target and the relative path steps to it.
type Walk struct {
	TargetX uint16
	TargetY uint16
	Steps   []Step
}

type ReportAbuse struct {
	Username string
	Offence  uint8
	Mute     bool
}

// GameSetting toggles one of the client options.
type GameSetting struct {
	Index   uint8
	Name    string
	Enabled bool
}

type PrivacySettings struct {
	Chat        bool
	PrivateChat bool
	Trade       bool
	Duel        bool
}

type SleepWord struct {
	Word string
}

type CombatStyle struct {
	Style uint8
}

type ChooseOption struct {
	Option uint8
}

// Index targets an entity or inventory slot by server index.
type Index struct {
	Index uint16
}

type Coords struct {
	X uint16
	Y uint16
}

type GroundItem struct {
	X  uint16
	Y  uint16
	ID uint16
}

type Prayer struct {
	Index uint8
}

type ShopTrade struct {
	ID    uint16
	Price uint32
}

type WorldInfo struct {
	Index           uint16
	PlaneWidth      uint16
	PlaneHeight     uint16
	PlaneIndex      uint16
	PlaneMultiplier uint16
}

type ServerMessage struct {
	Message string
}

type Friend struct {
	Username string
	World    uint8
}

type FriendList struct {
	Friends []Friend
}

// FriendMessage is a private message delivered to its recipient. A zero ID
// is replaced with a random one when encoding.
type FriendMessage struct {
	Username string
	ID       uint32
	Message  string
}

type IgnoreList struct {
	Usernames []string
}

type Item struct {
	ID       uint16
	Amount   uint32
	Equipped bool
}

type InventoryItems struct {
	Items []Item
}

type InventoryItemUpdate struct {
	Index  uint8
	ID     uint16
	Amount uint32
}

type InventoryItemRemove struct {
	Index uint8
}

// BankOpen lists the bank contents. A zero MaxItems means DefaultBankSize.
type BankOpen struct {
	MaxItems uint8
	Items    []Item
}

type BankUpdate struct {
	Index  uint8
	ID     uint16
	Amount uint32
}

type Position struct {
	X      uint16
	Y      uint16
	Sprite uint8
}

// KnownCharacter is the per-tick delta for a character the client already
// tracks. At most one of Removing, Moved and SpriteChanged applies.
type KnownCharacter struct {
	Removing      bool
	Moved         bool
	SpriteChanged bool
	Sprite        uint8
}

// AddingCharacter introduces a character near the player. X and Y are
// 5-bit offsets. A zero ID means no appearance id follows.
type AddingCharacter struct {
	Index  uint16
	X      uint8
	Y      uint8
	Sprite uint8
	ID     uint16
}

type RegionPlayers struct {
	Player Position
	Known  []KnownCharacter
	Adding []AddingCharacter
}

type GameSettings struct {
	CameraAuto     bool
	OneMouseButton bool
	SoundOn        bool
}

// Skill is one entry of the stat list. Level is derived from Experience on
// encode and filled in on decode.
type Skill struct {
	Current    uint8
	Level      uint8
	Experience uint32
}

type PlayerStatList struct {
	Skills      [SkillCount]Skill
	QuestPoints uint8
}

type ExperienceUpdate struct {
	Index      uint8
	Experience uint32
}

type Fatigue struct {
	Fatigue uint16
}

type SystemUpdate struct {
	Seconds uint16
}

// Welcome is shown after login. A zero RecoveryDays is sent as
// DefaultRecoveryDays.
type Welcome struct {
	LastIP         netip.Addr
	LastLoginDays  uint16
	RecoveryDays   uint8
	UnreadMessages uint16
}

type TeleportBubble struct {
	Type uint8
	X    uint8
	Y    uint8
}

type Sound struct {
	Name string
}

type OptionList struct {
	Options []string
}

type ShopItem struct {
	ID     uint16
	Amount uint16
	Price  uint8
}

type ShopOpen struct {
	General        bool
	SellMultiplier uint8
	BuyMultiplier  uint8
	Items          []ShopItem
}

type SleepOpen struct {
	Captcha []byte
}
