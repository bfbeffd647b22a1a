package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"filevault-api/internal/domain/file"
)

type (
	SortKey   string
	SortOrder string
)

const (
	SortByName     SortKey = "name"
	SortBySize     SortKey = "size"
	SortByDate     SortKey = "date"
	SortByCategory SortKey = "category"

	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterAndSort is a pure view over a record slice: the input is never
// mutated. Filtering is a case-insensitive substring match on the name ANDed
// with the category (category "all" always matches). Sorting is stable, so
// records with equal keys keep their index order.
func FilterAndSort(
	records file.Records,
	query string,
	category string,
	sortKey SortKey,
	sortOrder SortOrder,
) file.Records {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make(file.Records, 0, len(records))
	for _, rec := range records {
		if q != "" && !strings.Contains(strings.ToLower(rec.Name), q) {
			continue
		}
		if category != "" && category != "all" && string(rec.Category) != category {
			continue
		}
		out = append(out, rec)
	}

	coll := collate.New(language.Und)
	less := func(a, b *file.Record) int {
		switch sortKey {
		case SortBySize:
			switch {
			case a.SizeBytes < b.SizeBytes:
				return -1
			case a.SizeBytes > b.SizeBytes:
				return 1
			}
			return 0
		case SortByDate:
			switch {
			case a.LastModified.Before(b.LastModified):
				return -1
			case a.LastModified.After(b.LastModified):
				return 1
			}
			return 0
		case SortByCategory:
			return strings.Compare(string(a.Category), string(b.Category))
		default: // name
			return coll.CompareString(a.Name, b.Name)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if sortOrder == SortDesc {
			return c > 0
		}
		return c < 0
	})

	return out
}

type Usage struct {
	TotalBytes     int64
	TotalFormatted string
	Percent        float64
}

// UsageSummary sums the given records against the quota. Percent is capped at
// 100 and rounded to one decimal.
func UsageSummary(records file.Records, quotaBytes int64) Usage {
	var total int64
	for _, rec := range records {
		total += rec.SizeBytes
	}

	var percent float64
	if quotaBytes > 0 {
		percent = float64(total) / float64(quotaBytes) * 100
		if percent > 100 {
			percent = 100
		}
		percent = math.Round(percent*10) / 10
	}

	return Usage{
		TotalBytes:     total,
		TotalFormatted: FormatFileSize(total),
		Percent:        percent,
	}
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count in binary (1024) units with two-decimal
// precision, choosing the largest unit whose whole part is at least 1.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	if i == 0 {
		return fmt.Sprintf("%d Bytes", bytes)
	}

	return fmt.Sprintf("%.2f %s", float64(bytes)/math.Pow(1024, float64(i)), sizeUnits[i])
}
