package vars

import "sort"

// ApplyOverwrites merges an overlay into base in place. Mapping values
// recurse into the existing sub-mapping (created when absent); any
// other value overwrites outright. The merge is idempotent but not
// commutative: the overlay wins at the leaf level while nested keys it
// does not mention are preserved from the base.
//
// The overlay may be an *OrderedMap (its insertion order is kept for
// newly introduced keys) or a plain map, in which case new keys are
// appended in sorted order so the result stays deterministic.
func ApplyOverwrites(base *OrderedMap, overlay interface{}) {
	for _, kv := range overlayPairs(overlay) {
		key, value := kv.key, kv.value

		if sub := asMapping(value); sub != nil {
			existing, ok := base.Get(key)
			target, isMap := existing.(*OrderedMap)
			if !ok || !isMap {
				target = NewOrderedMap()
				base.Set(key, target)
			}
			ApplyOverwrites(target, sub)
			continue
		}

		base.Set(key, value)
	}
}

type pair struct {
	key   string
	value interface{}
}

func overlayPairs(overlay interface{}) []pair {
	switch o := overlay.(type) {
	case *OrderedMap:
		if o == nil {
			return nil
		}
		pairs := make([]pair, 0, o.Len())
		for _, k := range o.Keys() {
			v, _ := o.Get(k)
			pairs = append(pairs, pair{k, v})
		}
		return pairs
	case map[string]interface{}:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]pair, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, pair{k, o[k]})
		}
		return pairs
	default:
		return nil
	}
}

// asMapping normalizes a value to something ApplyOverwrites can
// recurse into, or nil when the value is not a mapping.
func asMapping(v interface{}) interface{} {
	switch v.(type) {
	case *OrderedMap, map[string]interface{}:
		return v
	default:
		return nil
	}
}
