package game

// Fruit is one entry of the fruit catalog. Level is the level the fruit is
// the principal pickup for.
type Fruit struct {
	Name       string `json:"name" msgpack:"name"`
	Color      string `json:"color" msgpack:"color"`
	Points     int    `json:"points" msgpack:"points"`
	Glyph      string `json:"glyph,omitempty" msgpack:"glyph,omitempty"`
	Image      string `json:"image,omitempty" msgpack:"image,omitempty"`
	SnakeColor string `json:"snakeColor" msgpack:"snakeColor"`
	Level      int    `json:"level" msgpack:"level"`
}

// Tier returns the difficulty tier the fruit belongs to
func (f Fruit) Tier() Tier {
	return TierOf(f.Level)
}

// fruitCatalog is indexed by level - 1
var fruitCatalog = [...]Fruit{
	// Easy
	{Name: "Orange", Color: "#FFA500", Points: 100, Glyph: "🍊", Level: 1, SnakeColor: "#FF0000"},
	{Name: "Mango", Color: "#FFB347", Points: 100, Glyph: "🥭", Level: 2, SnakeColor: "#0000FF"},
	{Name: "Grapes", Color: "#800080", Points: 100, Glyph: "🍇", Level: 3, SnakeColor: "#00FF00"},
	{Name: "Blueberry", Color: "#0000FF", Points: 100, Glyph: "🫐", Level: 4, SnakeColor: "#FFFF00"},
	{Name: "Watermelon", Color: "#FF3030", Points: 200, Glyph: "🍉", Level: 5, SnakeColor: "#800080"},

	// Medium
	{Name: "Apple", Color: "#FF0000", Points: 100, Glyph: "🍎", Level: 6, SnakeColor: "#CD7F32"},
	{Name: "Pineapple", Color: "#FFFF00", Points: 100, Glyph: "🍍", Level: 7, SnakeColor: "#4B0082"},
	{Name: "Strawberry", Color: "#FF69B4", Points: 100, Glyph: "🍓", Level: 8, SnakeColor: "#00FFFF"},
	{Name: "Peach", Color: "#FFDAB9", Points: 100, Glyph: "🍑", Level: 9, SnakeColor: "#FF00FF"},
	{Name: "Blackberry", Color: "#000080", Points: 100, Glyph: "🫐", Level: 10, SnakeColor: "#FFBF00"},

	// Hard
	{Name: "Passion Fruit", Color: "#9370DB", Points: 300, Image: "passion-fruit.png", Level: 11, SnakeColor: "#50C878"},
	{Name: "Papaya", Color: "#FFA07A", Points: 300, Image: "papaya.png", Level: 12, SnakeColor: "#708090"},
	{Name: "Starfruit", Color: "#FFD700", Points: 300, Glyph: "★", Level: 13, SnakeColor: "#FFDB58"},
	{Name: "Dragon Fruit", Color: "#FF1493", Points: 500, Image: "dragon-fruit.png", Level: 14, SnakeColor: "#F0F8FF"},
	{Name: "Banana", Color: "#FFFF00", Points: 7777, Glyph: "🍌", Level: 15, SnakeColor: "#39FF14"},
}

// FruitCount is the number of catalog entries
const FruitCount = len(fruitCatalog)

// FruitForLevel returns the principal fruit of a level. Levels past the
// catalog map to the last fruit.
func FruitForLevel(level int) Fruit {
	return fruitCatalog[catalogLevel(level)-1]
}

func catalogLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > FruitCount {
		return FruitCount
	}
	return level
}
