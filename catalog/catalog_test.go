package catalog_test

import (
	"strings"
	"testing"

	"github.com/jrsteele09/go-teetime/catalog"
	apperrors "github.com/jrsteele09/go-teetime/internal/errors"
	"github.com/stretchr/testify/require"
)

func names(courses []catalog.Course) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.Name)
	}
	return out
}

func TestDefault(t *testing.T) {
	repo, err := catalog.Default()
	require.NoError(t, err)

	require.Equal(t, []string{"Augusta National", "Pebble Beach Golf Links", "St Andrews"}, names(repo.Featured()))
	require.Equal(t, []string{
		"Pine Valley Golf Club",
		"Merion Golf Club",
		"Baltusrol Golf Club",
		"Shinnecock Hills Golf Club",
	}, names(repo.Results(catalog.SortRecommended)))

	pv, err := repo.Course(1)
	require.NoError(t, err)
	require.Len(t, pv.WeeklyForecast, 7)
	require.Equal(t, "Monday", pv.WeeklyForecast[0].Day)
	require.Equal(t, "72°F", pv.WeeklyForecast[0].Temp)
	require.Len(t, pv.AvailableDays, 3)
	require.Equal(t, "Friday, April 11, 2025", pv.AvailableDays[0].Label())
	require.Equal(t, 89, pv.FromPrice())
	require.Equal(t, "12 miles", pv.Distance())
}

func TestResults_Sorted(t *testing.T) {
	repo, err := catalog.Default()
	require.NoError(t, err)

	require.Equal(t, "Merion Golf Club", repo.Results(catalog.SortPrice)[0].Name)
	require.Equal(t, "Merion Golf Club", repo.Results(catalog.SortDistance)[0].Name)
	require.Equal(t, "Shinnecock Hills Golf Club", repo.Results(catalog.SortDistance)[3].Name)

	byRating := repo.Results(catalog.SortRating)
	// stable: Pine Valley precedes Shinnecock at 4.9
	require.Equal(t, []string{"Pine Valley Golf Club", "Shinnecock Hills Golf Club", "Baltusrol Golf Club", "Merion Golf Club"}, names(byRating))

	require.Equal(t, catalog.SortRecommended, catalog.ParseSortOrder("bogus"))
	require.Equal(t, catalog.SortPrice, catalog.ParseSortOrder("price"))
}

func TestCourse_NotFound(t *testing.T) {
	repo, err := catalog.Default()
	require.NoError(t, err)

	_, err = repo.Course(99)
	require.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCourse_DaysAndTeeTimes(t *testing.T) {
	repo, err := catalog.Default()
	require.NoError(t, err)

	merion, err := repo.Course(2)
	require.NoError(t, err)
	days := merion.Days("2025-05-02")
	require.Len(t, days, 1)
	require.Equal(t, "2025-05-02", days[0].Date)

	tt, ok := merion.FindTeeTime("2025-05-02", "09:15")
	require.True(t, ok)
	require.Equal(t, "$85", tt.PriceLabel())
	require.Equal(t, "9:15 AM", tt.Label())

	_, ok = merion.FindTeeTime("2025-05-03", "09:15")
	require.False(t, ok)

	pv, err := repo.Course(1)
	require.NoError(t, err)
	tt, ok = pv.FindTeeTime("2025-04-12", "13:00")
	require.True(t, ok)
	require.Equal(t, 119, tt.Price)
}

func TestWeatherIcon(t *testing.T) {
	require.Equal(t, "sun", catalog.Weather{Condition: "Sunny"}.Icon())
	require.Equal(t, "cloud", catalog.Weather{Condition: "partly cloudy"}.Icon())
	require.Equal(t, "cloud-rain", catalog.Weather{Condition: "rainy"}.Icon())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"duplicate id": "courses:\n  - {id: 1, name: A}\n  - {id: 1, name: B}\n",
		"missing name": "courses:\n  - {id: 1}\n",
		"bad tee time": "courses:\n  - id: 1\n    name: A\n    tee_times: [{time: soon, price: 10}]\n",
		"bad date":     "courses:\n  - id: 1\n    name: A\n    available_days: [{date: tomorrow}]\n",
		"not yaml":     "courses: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Load(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}
