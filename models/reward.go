package models

// Transaction kinds. Kinds prefixed "earned" credit the balance, every
// other kind debits it.
const (
	TxEarnedReport  = "earned_report"
	TxEarnedCollect = "earned_collect"
	TxRedeemed      = "redeemed"
)

// RewardAccount holds the stored point counter for a user, one row per
// user, created lazily on the first earning event. The transaction log is
// ground truth; the counter is updated in the same database transaction
// as every ledger append.
type RewardAccount struct {
	Model
	UserID      uint `json:"user_id" gorm:"not null;uniqueIndex"`
	Points      int  `json:"points" gorm:"not null;default:0"`
	Level       int  `json:"level" gorm:"not null;default:1"`
	IsAvailable bool `json:"is_available" gorm:"not null;default:true"`
}

// Transaction is an immutable ledger entry. Amount is always positive;
// the kind carries the sign.
type Transaction struct {
	Model
	UserID      uint   `json:"user_id" gorm:"not null;index"`
	Kind        string `json:"type" gorm:"column:kind;type:varchar(50);not null"`
	Amount      int    `json:"amount" gorm:"not null"`
	Description string `json:"description" gorm:"type:text;not null"`
}

// RewardItem is a redeemable catalog offer, independent of users.
type RewardItem struct {
	Model
	Name           string `json:"name" gorm:"type:varchar(255);not null"`
	Cost           int    `json:"cost" gorm:"not null"`
	Description    string `json:"description" gorm:"type:text"`
	CollectionInfo string `json:"collection_info" gorm:"type:text"`
	IsAvailable    bool   `json:"is_available" gorm:"not null;default:true"`
}

// AvailableReward is the catalog projection returned to clients. Entry 0
// is synthetic and represents the user's own redeemable balance.
type AvailableReward struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Cost           int    `json:"cost"`
	Description    string `json:"description"`
	CollectionInfo string `json:"collection_info"`
}

type LeaderboardEntry struct {
	UserID   uint   `json:"user_id"`
	Fullname string `json:"fullname"`
	Points   int    `json:"points"`
	Level    int    `json:"level"`
}
