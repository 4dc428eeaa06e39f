package lich

// Category classifies the relationship between two branches.
type Category int

const (
	CategoryTamHop  Category = iota // triad affinity
	CategoryLucXung                 // direct opposition
	CategoryThaiTue                 // same branch
	CategoryFair                    // none of the above
)

type categoryInfo struct {
	score int
	text  string
	color string
	bg    string
	key   string
}

var categories = [...]categoryInfo{
	CategoryTamHop:  {95, "Tuyệt vời (Tam Hợp)", "text-green-600", "bg-green-50", "tam_hop"},
	CategoryLucXung: {15, "Đại kỵ (Lục Xung)", "text-red-600", "bg-red-50", "luc_xung"},
	CategoryThaiTue: {50, "Bình hòa (Thái Tuế)", "text-blue-500", "bg-blue-50", "thai_tue"},
	CategoryFair:    {75, "Khá tốt", "text-teal-600", "bg-teal-50", "fair"},
}

// Score returns the fixed score of the category.
func (c Category) Score() int { return categories[c].score }

func (c Category) String() string { return categories[c].text }

// Key returns a stable ASCII identifier, used for message lookups.
func (c Category) Key() string { return categories[c].key }

// MarshalText encodes the category by its key.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.Key()), nil }

// Compatibility is the verdict for a birth year against a target day.
// Color and Bg are opaque style tokens for the rendering layer.
type Compatibility struct {
	Score    int      `json:"score"`
	Category Category `json:"category"`
	Text     string   `json:"text"`
	Color    string   `json:"color"`
	Bg       string   `json:"bg"`
	UserChi  Chi      `json:"userChi"`
	DayChi   Chi      `json:"dayChi"`
}

// Band groups scores the way the score bar is colored.
type Band int

const (
	BandPoor Band = iota
	BandMedium
	BandGood
)

var bandNames = [...]string{"poor", "medium", "good"}

func (b Band) String() string { return bandNames[b] }

// MarshalText encodes the band by name.
func (b Band) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// BandOf returns good above 70, medium above 40, poor otherwise.
func BandOf(score int) Band {
	switch {
	case score > 70:
		return BandGood
	case score > 40:
		return BandMedium
	default:
		return BandPoor
	}
}

// Classify applies the rule table. Order matters: Tam Hợp, then Lục Xung,
// then Thái Tuế, then the default.
func Classify(userChi, dayChi Chi) Category {
	allies := tamHop[floorMod(int(userChi), chiCount)]
	switch {
	case allies[0] == dayChi || allies[1] == dayChi:
		return CategoryTamHop
	case lucXung[floorMod(int(userChi), chiCount)] == dayChi:
		return CategoryLucXung
	case userChi == dayChi:
		return CategoryThaiTue
	default:
		return CategoryFair
	}
}

// CompareBranches builds the full verdict for two branches.
func CompareBranches(userChi, dayChi Chi) Compatibility {
	cat := Classify(userChi, dayChi)
	info := categories[cat]
	return Compatibility{
		Score:    info.score,
		Category: cat,
		Text:     info.text,
		Color:    info.color,
		Bg:       info.bg,
		UserChi:  userChi,
		DayChi:   dayChi,
	}
}

// CheckAgeCompatibility scores the birth-year branch against the day
// branch of target.
func CheckAgeCompatibility(birthYear int, target Date) Compatibility {
	dayChi := CanChi(target.Day, target.Month, target.Year).DayChiOnly
	return CompareBranches(BirthChi(birthYear), dayChi)
}
