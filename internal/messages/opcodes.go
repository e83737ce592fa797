package messages

// Client-to-server message types.
const (
	TypeAppearance           = "appearance"
	TypeBankClose            = "bankClose"
	TypeBankDeposit          = "bankDeposit"
	TypeBankWithdraw         = "bankWithdraw"
	TypeChat                 = "chat"
	TypeChooseOption         = "chooseOption"
	TypeCombatStyle          = "combatStyle"
	TypeCommand              = "command"
	TypeFriendAdd            = "friendAdd"
	TypeFriendRemove         = "friendRemove"
	TypeGroundItemTake       = "groundItemTake"
	TypeIgnoreAdd            = "ignoreAdd"
	TypeIgnoreRemove         = "ignoreRemove"
	TypeInventoryCommand     = "inventoryCommand"
	TypeInventoryDrop        = "inventoryDrop"
	TypeInventoryUnequip     = "inventoryUnequip"
	TypeInventoryWear        = "inventoryWear"
	TypeLogin                = "login"
	TypeLogout               = "logout"
	TypeNPCAttack            = "npcAttack"
	TypeNPCTalk              = "npcTalk"
	TypeObjectCommandOne     = "objectCommandOne"
	TypeObjectCommandTwo     = "objectCommandTwo"
	TypePing                 = "ping"
	TypePlayerAttack         = "playerAttack"
	TypePlayerFollow         = "playerFollow"
	TypePlayerTrade          = "playerTrade"
	TypePrayerOff            = "prayerOff"
	TypePrayerOn             = "prayerOn"
	TypePrivateMessage       = "privateMessage"
	TypeRegister             = "register"
	TypeReportAbuse          = "reportAbuse"
	TypeSession              = "session"
	TypeSettingsGame         = "settingsGame"
	TypeSettingsPrivacy      = "settingsPrivacy"
	TypeShopBuy              = "shopBuy"
	TypeShopClose            = "shopClose"
	TypeShopSell             = "shopSell"
	TypeSleepWord            = "sleepWord"
	TypeWalk                 = "walk"
	TypeWalkAction           = "walkAction"
	TypeTradeAccept          = "tradeAccept"
	TypeTradeDecline         = "tradeDecline"
	TypeWallObjectCommandOne = "wallObjectCommandOne"
	TypeWallObjectCommandTwo = "wallObjectCommandTwo"
)

// Server-to-client message types.
const (
	TypeBankOpen                   = "bankOpen"
	TypeBankUpdate                 = "bankUpdate"
	TypeCloseConnection            = "closeConnection"
	TypeFriendList                 = "friendList"
	TypeFriendMessage              = "friendMessage"
	TypeFriendStatusChange         = "friendStatusChange"
	TypeGameSettings               = "gameSettings"
	TypeIgnoreList                 = "ignoreList"
	TypeInventoryItemRemove        = "inventoryItemRemove"
	TypeInventoryItemUpdate        = "inventoryItemUpdate"
	TypeInventoryItems             = "inventoryItems"
	TypeLogoutDeny                 = "logoutDeny"
	TypeOptionList                 = "optionList"
	TypeOptionListClose            = "optionListClose"
	TypePlayerDied                 = "playerDied"
	TypePlayerStatExperienceUpdate = "playerStatExperienceUpdate"
	TypePlayerStatFatigue          = "playerStatFatigue"
	TypePlayerStatList             = "playerStatList"
	TypePrivacySettings            = "privacySettings"
	TypeRegionPlayers              = "regionPlayers"
	TypeServerMessage              = "serverMessage"
	TypeServerMessageOnTop         = "serverMessageOnTop"
	TypeShopOpen                   = "shopOpen"
	TypeSleepClose                 = "sleepClose"
	TypeSleepOpen                  = "sleepOpen"
	TypeSound                      = "sound"
	TypeSystemUpdate               = "systemUpdate"
	TypeTeleportBubble             = "teleportBubble"
	TypeTradeClose                 = "tradeClose"
	TypeWelcome                    = "welcome"
	TypeWorldInfo                  = "worldInfo"
)

var clientOpcodes = map[string]uint8{
	TypeAppearance:           235,
	TypeBankClose:            212,
	TypeBankDeposit:          23,
	TypeBankWithdraw:         22,
	TypeChat:                 216,
	TypeChooseOption:         116,
	TypeCloseConnection:      31,
	TypeCombatStyle:          29,
	TypeCommand:              38,
	TypeFriendAdd:            195,
	TypeFriendRemove:         167,
	TypeGroundItemTake:       247,
	TypeIgnoreAdd:            132,
	TypeIgnoreRemove:         241,
	TypeInventoryCommand:     90,
	TypeInventoryDrop:        246,
	TypeInventoryUnequip:     170,
	TypeInventoryWear:        169,
	TypeLogin:                0,
	TypeLogout:               102,
	TypeNPCAttack:            190,
	TypeNPCTalk:              153,
	TypeObjectCommandOne:     136,
	TypeObjectCommandTwo:     79,
	TypePing:                 67,
	TypePlayerAttack:         171,
	TypePlayerFollow:         165,
	TypePlayerTrade:          142,
	TypePrayerOff:            254,
	TypePrayerOn:             60,
	TypePrivateMessage:       218,
	TypeRegister:             2,
	TypeReportAbuse:          206,
	TypeSession:              32,
	TypeSettingsGame:         111,
	TypeSettingsPrivacy:      64,
	TypeShopBuy:              236,
	TypeShopClose:            166,
	TypeShopSell:             221,
	TypeSleepWord:            45,
	TypeTradeAccept:          55,
	TypeTradeDecline:         230,
	TypeWalk:                 187,
	TypeWalkAction:           16,
	TypeWallObjectCommandOne: 14,
	TypeWallObjectCommandTwo: 127,
}

var serverOpcodes = map[string]uint8{
	TypeBankClose:                  203,
	TypeBankOpen:                   42,
	TypeBankUpdate:                 249,
	TypeCloseConnection:            4,
	TypeFriendList:                 71,
	TypeFriendMessage:              120,
	TypeFriendStatusChange:         149,
	TypeGameSettings:               240,
	TypeIgnoreList:                 109,
	TypeInventoryItemRemove:        123,
	TypeInventoryItemUpdate:        90,
	TypeInventoryItems:             53,
	TypeLogoutDeny:                 183,
	TypeOptionList:                 245,
	TypeOptionListClose:            252,
	TypePlayerDied:                 83,
	TypePlayerStatExperienceUpdate: 33,
	TypePlayerStatFatigue:          114,
	TypePlayerStatList:             156,
	TypePrivacySettings:            51,
	TypeRegionPlayers:              191,
	TypeServerMessage:              131,
	TypeServerMessageOnTop:         222,
	TypeShopClose:                  137,
	TypeShopOpen:                   101,
	TypeSleepClose:                 84,
	TypeSleepOpen:                  117,
	TypeSound:                      204,
	TypeSystemUpdate:               52,
	TypeTeleportBubble:             36,
	TypeTradeClose:                 128,
	TypeWelcome:                    182,
	TypeWorldInfo:                  25,
}
