package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iancoleman/orderedmap"
)

/**
 * Convert struct to ordered map preserving field order
 * @param {interface{}} v - Struct with json tags
 * @returns {*orderedmap.OrderedMap} Map keyed by json tag in declaration order
 * @returns {error} Serialization error
 */
func StructToOrderedMap(v interface{}) (*orderedmap.OrderedMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := orderedmap.New()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

/**
 * Print records as an aligned table
 * @param {[]*orderedmap.OrderedMap} dataList - Records, all sharing the first record's columns
 * @description
 * - Column order follows the first record's key order
 * - Header names are the upper-cased json keys
 */
func PrintFormat(dataList []*orderedmap.OrderedMap) {
	if len(dataList) == 0 {
		return
	}

	keys := dataList[0].Keys()
	widths := make([]int, len(keys))
	for i, key := range keys {
		widths[i] = len(key)
	}

	rows := make([][]string, 0, len(dataList))
	for _, record := range dataList {
		row := make([]string, len(keys))
		for i, key := range keys {
			value, _ := record.Get(key)
			row[i] = formatCell(value)
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
		rows = append(rows, row)
	}

	var header strings.Builder
	for i, key := range keys {
		header.WriteString(fmt.Sprintf("%-*s  ", widths[i], strings.ToUpper(key)))
	}
	fmt.Println(strings.TrimRight(header.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(fmt.Sprintf("%-*s  ", widths[i], cell))
		}
		fmt.Println(strings.TrimRight(line.String(), " "))
	}
}

func formatCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		// JSON数值统一是float64，整数按整数显示
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
