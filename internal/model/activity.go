package model

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// DifficultyRank 难度排序值，未知难度排最后
func DifficultyRank(level string) int {
	switch level {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 4
	}
}

// swagger:model ActivityCategory
type ActivityCategory struct {
	UUIDBase
	Name            string `gorm:"size:100;not null" json:"name"`
	Description     string `gorm:"type:text" json:"description"`
	DifficultyLevel string `gorm:"size:10" json:"difficultyLevel"` // easy / medium / hard，空表示未设置
	SortOrder       int    `gorm:"default:0" json:"sortOrder"`
}

func (ActivityCategory) TableName() string {
	return "activity_categories"
}

// swagger:model ActivityItem
type ActivityItem struct {
	UUIDBase
	CategoryID      string `gorm:"index;type:varchar(36);not null" json:"categoryId"`
	Name            string `gorm:"size:100;not null" json:"name"`
	DifficultyLevel string `gorm:"size:10" json:"difficultyLevel"` // 空表示继承分类难度
	ImageURL        string `gorm:"size:512" json:"imageUrl"`
	AudioURL        string `gorm:"size:512" json:"audioUrl"`
	SortOrder       int    `gorm:"default:0" json:"sortOrder"`
}

func (ActivityItem) TableName() string {
	return "activity_items"
}

// EffectiveDifficulty 条目自身难度优先，未设置时继承分类难度
func (i ActivityItem) EffectiveDifficulty(category *ActivityCategory) string {
	if i.DifficultyLevel != "" {
		return i.DifficultyLevel
	}
	if category != nil {
		return category.DifficultyLevel
	}
	return ""
}
