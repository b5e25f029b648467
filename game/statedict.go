package game

// Keys of a state snapshot.
const (
	KeyWhitePositions = "white_positions"
	KeyBlackPositions = "black_positions"
	KeyActivePlayer   = "active_player"
	KeyDice           = "dice"
	KeyWhitePoints    = "white_points"
	KeyWhiteHoles     = "white_holes"
	KeyBlackPoints    = "black_points"
	KeyBlackHoles     = "black_holes"
	KeyTurnStage      = "turn_stage"
	KeyStateID        = "state_id"
)

// Field is an occupied board position and its checker count.
type Field struct {
	Position int
	Count    int
}

// StateDict is an engine state snapshot. Values are loosely typed; the accessors
// resolve missing or ill-typed entries to the given defaults instead of failing.
type StateDict map[string]any

// Int returns the integer value of key, or def.
func (d StateDict) Int(key string, def int) int {
	v, ok := d[key]
	if !ok {
		return def
	}
	if n, ok := toInt(v); ok {
		return n
	}
	return def
}

// Text returns the string value of key, or def.
func (d StateDict) Text(key string, def string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return def
}

// Pair returns a two-integer value such as the dice, or def.
func (d StateDict) Pair(key string, def [2]int) [2]int {
	v, ok := d[key]
	if !ok {
		return def
	}
	if p, ok := toPair(v); ok {
		return p
	}
	return def
}

// Fields returns a (position, count) list. Malformed entries are skipped.
func (d StateDict) Fields(key string) []Field {
	switch v := d[key].(type) {
	case []Field:
		return v
	case [][2]int:
		fields := make([]Field, 0, len(v))
		for _, p := range v {
			fields = append(fields, Field{Position: p[0], Count: p[1]})
		}
		return fields
	case []any:
		fields := make([]Field, 0, len(v))
		for _, e := range v {
			if f, ok := e.(Field); ok {
				fields = append(fields, f)
				continue
			}
			if p, ok := toPair(e); ok {
				fields = append(fields, Field{Position: p[0], Count: p[1]})
			}
		}
		return fields
	default:
		return nil
	}
}

func toPair(v any) ([2]int, bool) {
	switch p := v.(type) {
	case [2]int:
		return p, true
	case [2]uint8:
		return [2]int{int(p[0]), int(p[1])}, true
	case []int:
		if len(p) == 2 {
			return [2]int{p[0], p[1]}, true
		}
	case []any:
		if len(p) == 2 {
			a, okA := toInt(p[0])
			b, okB := toInt(p[1])
			if okA && okB {
				return [2]int{a, b}, true
			}
		}
	}
	return [2]int{}, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case PlayerID:
		return int(n), true
	default:
		return 0, false
	}
}
