package services

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/fevilela/GymFeedback/internal/models"
)

// DashboardFilter narrows the feedback set; nil/empty fields mean no
// constraint. From/To are taken at local day granularity: From is widened to
// start of day and To (or From when To is nil) to end of day.
type DashboardFilter struct {
	From     *time.Time
	To       *time.Time
	PersonID *uint
	Unit     string
}

type CategoryStat struct {
	Category models.Category `json:"category"`
	Average  float64         `json:"average"`
	Count    int             `json:"count"`
}

type HistogramBucket struct {
	Stars int `json:"stars"`
	Count int `json:"count"`
}

type StaffRanking struct {
	PersonID uint    `json:"personId"`
	Name     string  `json:"name"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

// DashboardView is the derived statistics block the staff dashboard renders.
type DashboardView struct {
	TotalCount        int               `json:"totalCount"`
	AverageRating     string            `json:"averageRating"`
	TodayCount        int               `json:"todayCount"`
	CategoryBreakdown []CategoryStat    `json:"categoryBreakdown"`
	RatingHistogram   []HistogramBucket `json:"ratingHistogram"`
	TopStaff          []StaffRanking    `json:"topStaff"`
	Feedbacks         []models.Feedback `json:"feedbacks"`
}

// ComputeDashboard filters the feedback set and derives its statistics. It is
// a pure computation: same inputs give an identical view, and it never fails.
func ComputeDashboard(feedbacks []models.Feedback, collaborators []models.Collaborator, filter DashboardFilter) DashboardView {
	return computeDashboardAt(feedbacks, collaborators, filter, time.Now())
}

func computeDashboardAt(feedbacks []models.Feedback, collaborators []models.Collaborator, filter DashboardFilter, now time.Time) DashboardView {
	byID := make(map[uint]models.Collaborator, len(collaborators))
	for _, c := range collaborators {
		byID[c.ID] = c
	}

	filtered := filterFeedbacks(feedbacks, byID, filter)

	view := DashboardView{
		TotalCount: len(filtered),
		Feedbacks:  filtered,
	}

	ratingSum := 0
	for _, f := range filtered {
		ratingSum += f.Rating
		if sameDay(f.Date, now) {
			view.TodayCount++
		}
	}
	if len(filtered) > 0 {
		view.AverageRating = formatAverage(float64(ratingSum) / float64(len(filtered)))
	} else {
		view.AverageRating = "0.0"
	}

	view.CategoryBreakdown = categoryBreakdown(filtered)
	view.RatingHistogram = ratingHistogram(filtered)
	view.TopStaff = topStaff(filtered, byID)

	return view
}

func filterFeedbacks(feedbacks []models.Feedback, byID map[uint]models.Collaborator, filter DashboardFilter) []models.Feedback {
	filtered := make([]models.Feedback, 0, len(feedbacks))
	for _, f := range feedbacks {
		if filter.From != nil {
			from := startOfDay(*filter.From)
			until := *filter.From
			if filter.To != nil {
				until = *filter.To
			}
			to := endOfDay(until)
			if f.Date.Before(from) || f.Date.After(to) {
				continue
			}
		}
		if filter.PersonID != nil {
			if f.PersonID == nil || *f.PersonID != *filter.PersonID {
				continue
			}
		}
		if filter.Unit != "" && resolveUnit(f, byID) != filter.Unit {
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered
}

// resolveUnit returns the feedback's unit, falling back to the unit of a still
// existing collaborator. Empty means the unit is unknown; the unit filter
// excludes such entries.
func resolveUnit(f models.Feedback, byID map[uint]models.Collaborator) string {
	if f.Unit != "" {
		return f.Unit
	}
	if f.PersonID != nil {
		if collab, ok := byID[*f.PersonID]; ok {
			return collab.Unit
		}
	}
	return ""
}

func categoryBreakdown(filtered []models.Feedback) []CategoryStat {
	sums := make(map[models.Category]int)
	counts := make(map[models.Category]int)
	for _, f := range filtered {
		sums[f.Category] += f.Rating
		counts[f.Category]++
	}

	// Walk the fixed category list so the output order never depends on map
	// iteration. Categories without entries are omitted.
	stats := make([]CategoryStat, 0, len(counts))
	for _, cat := range models.Categories {
		if counts[cat] == 0 {
			continue
		}
		stats = append(stats, CategoryStat{
			Category: cat,
			Average:  round1(float64(sums[cat]) / float64(counts[cat])),
			Count:    counts[cat],
		})
	}
	return stats
}

func ratingHistogram(filtered []models.Feedback) []HistogramBucket {
	buckets := make([]HistogramBucket, 0, 5)
	for stars := 5; stars >= 1; stars-- {
		count := 0
		for _, f := range filtered {
			if f.Rating == stars {
				count++
			}
		}
		buckets = append(buckets, HistogramBucket{Stars: stars, Count: count})
	}
	return buckets
}

func topStaff(filtered []models.Feedback, byID map[uint]models.Collaborator) []StaffRanking {
	type acc struct {
		sum   int
		count int
	}
	totals := make(map[uint]*acc)
	for _, f := range filtered {
		if f.PersonID == nil {
			continue
		}
		// Entries for deleted collaborators stay in the overall stats but do
		// not rank here.
		if _, exists := byID[*f.PersonID]; !exists {
			continue
		}
		a := totals[*f.PersonID]
		if a == nil {
			a = &acc{}
			totals[*f.PersonID] = a
		}
		a.sum += f.Rating
		a.count++
	}

	// Sort on the exact mean, then round for display.
	ranking := make([]StaffRanking, 0, len(totals))
	for id, a := range totals {
		ranking = append(ranking, StaffRanking{
			PersonID: id,
			Name:     byID[id].Name,
			Average:  float64(a.sum) / float64(a.count),
			Count:    a.count,
		})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Average != ranking[j].Average {
			return ranking[i].Average > ranking[j].Average
		}
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].PersonID < ranking[j].PersonID
	})
	if len(ranking) > 3 {
		ranking = ranking[:3]
	}
	for i := range ranking {
		ranking[i].Average = round1(ranking[i].Average)
	}
	return ranking
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
