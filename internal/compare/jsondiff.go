package compare

import (
	"strconv"

	"github.com/valyala/fastjson"
)

// DiffJSON compares two JSON trees structurally. Object key order is ignored;
// arrays compare positionally, except same-length arrays of objects, which use
// a best-match strategy so reordered object lists do not explode into noise.
// Paths use dot notation with numeric array indices, e.g. settings.retries.0.timeout.
func DiffJSON(v1, v2 *fastjson.Value) []FieldDiff {
	var diffs []FieldDiff
	diffValues(v1, v2, "", &diffs)
	return diffs
}

// EqualJSON reports semantic equality of two JSON trees.
func EqualJSON(v1, v2 *fastjson.Value) bool {
	return len(DiffJSON(v1, v2)) == 0
}

func diffValues(v1, v2 *fastjson.Value, path string, diffs *[]FieldDiff) {
	if v1.Type() == fastjson.TypeObject && v2.Type() == fastjson.TypeObject {
		o1, _ := v1.Object()
		o2, _ := v2.Object()
		diffObjects(o1, o2, path, diffs)
		return
	}
	if v1.Type() == fastjson.TypeArray && v2.Type() == fastjson.TypeArray {
		a1, _ := v1.Array()
		a2, _ := v2.Array()
		diffArrays(a1, a2, path, diffs)
		return
	}

	if !scalarEqual(v1, v2) {
		*diffs = append(*diffs, FieldDiff{
			Path:   path,
			Change: ChangeModified,
			Before: string(v1.MarshalTo(nil)),
			After:  string(v2.MarshalTo(nil)),
		})
	}
}

func diffObjects(o1, o2 *fastjson.Object, path string, diffs *[]FieldDiff) {
	o1.Visit(func(key []byte, v1 *fastjson.Value) {
		childPath := joinPath(path, string(key))
		if v2 := o2.Get(string(key)); v2 != nil {
			diffValues(v1, v2, childPath, diffs)
		} else {
			*diffs = append(*diffs, FieldDiff{
				Path:   childPath,
				Change: ChangeRemoved,
				Before: string(v1.MarshalTo(nil)),
				After:  "null",
			})
		}
	})

	o2.Visit(func(key []byte, v2 *fastjson.Value) {
		if o1.Get(string(key)) == nil {
			*diffs = append(*diffs, FieldDiff{
				Path:   joinPath(path, string(key)),
				Change: ChangeAdded,
				Before: "null",
				After:  string(v2.MarshalTo(nil)),
			})
		}
	})
}

func diffArrays(a1, a2 []*fastjson.Value, path string, diffs *[]FieldDiff) {
	if len(a1) == len(a2) && allObjects(a1) && allObjects(a2) {
		diffObjectArrays(a1, a2, path, diffs)
		return
	}

	maxLen := len(a1)
	if len(a2) > maxLen {
		maxLen = len(a2)
	}
	for i := 0; i < maxLen; i++ {
		childPath := joinPath(path, strconv.Itoa(i))
		switch {
		case i < len(a1) && i < len(a2):
			diffValues(a1[i], a2[i], childPath, diffs)
		case i < len(a1):
			*diffs = append(*diffs, FieldDiff{
				Path:   childPath,
				Change: ChangeRemoved,
				Before: string(a1[i].MarshalTo(nil)),
				After:  "null",
			})
		default:
			*diffs = append(*diffs, FieldDiff{
				Path:   childPath,
				Change: ChangeAdded,
				Before: "null",
				After:  string(a2[i].MarshalTo(nil)),
			})
		}
	}
}

// diffObjectArrays pairs each object on side 1 with the not-yet-matched side 2
// object producing the fewest differences. Reordered lists of otherwise equal
// objects then produce no diffs at all.
func diffObjectArrays(a1, a2 []*fastjson.Value, path string, diffs *[]FieldDiff) {
	matched := make([]bool, len(a2))

	for i, v1 := range a1 {
		bestIdx := -1
		fewest := int(^uint(0) >> 1)

		for j, v2 := range a2 {
			if matched[j] {
				continue
			}
			var probe []FieldDiff
			diffValues(v1, v2, "", &probe)
			if len(probe) == 0 {
				bestIdx = j
				break
			}
			if len(probe) < fewest {
				fewest = len(probe)
				bestIdx = j
			}
		}

		if bestIdx >= 0 {
			matched[bestIdx] = true
			diffValues(v1, a2[bestIdx], joinPath(path, strconv.Itoa(i)), diffs)
		}
	}
}

func allObjects(a []*fastjson.Value) bool {
	for _, v := range a {
		if v.Type() != fastjson.TypeObject {
			return false
		}
	}
	return true
}

// scalarEqual compares two non-container values (or a container against a
// scalar) by canonical JSON rendering.
func scalarEqual(v1, v2 *fastjson.Value) bool {
	if v1.Type() != v2.Type() {
		return false
	}
	return string(v1.MarshalTo(nil)) == string(v2.MarshalTo(nil))
}

func joinPath(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}
