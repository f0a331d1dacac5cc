package common

import (
	"errors"
	"log"
	"time"

	"ygb/src/models"
	"ygb/src/types"
	"ygb/src/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AvailabilityManager owns every mutation of the guide calendar that does not
// go through the booking state machine.
type AvailabilityManager struct {
	db *gorm.DB
}

func NewAvailabilityManager(db *gorm.DB) *AvailabilityManager {
	return &AvailabilityManager{db: db}
}

// UpdateRange upserts one calendar cell per day in [start, end] to the given
// status. If any cell in the range is currently booked the whole call fails
// with a BookedDatesError and zero rows change. Every existing cell in the
// range is read under lock, not just the booked ones, so a concurrent accept
// cannot flip a cell to booked between the check and the upsert.
func (m *AvailabilityManager) UpdateRange(guideID uint, start, end time.Time, status types.AvailabilityStatus) (int64, error) {
	var daysUpdated int64
	err := m.db.Transaction(func(tx *gorm.DB) error {
		var guide models.User
		if err := tx.
			Model(&models.User{}).
			Where("id = ? AND role = ?", guideID, types.ROLE_GUIDE).
			First(&guide).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuideNotFound
			}
			return err
		}

		var cells []models.GuideAvailability
		if err := lockForUpdate(tx).
			Model(&models.GuideAvailability{}).
			Where("guide_id = ? AND date BETWEEN ? AND ?", guideID, start, end).
			Order("date ASC").
			Find(&cells).
			Error; err != nil {
			return err
		}
		var bookedDates []time.Time
		for _, cell := range cells {
			if cell.Status == string(types.AVAILABILITY_BOOKED) {
				bookedDates = append(bookedDates, cell.Date)
			}
		}
		if len(bookedDates) > 0 {
			return &BookedDatesError{Dates: bookedDates}
		}

		days := utils.DatesBetween(start, end)
		rows := make([]models.GuideAvailability, 0, len(days))
		for _, day := range days {
			rows = append(rows, models.GuideAvailability{
				GuideID: guideID,
				Date:    day,
				Status:  string(status),
			})
		}
		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "guide_id"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
			}).
			CreateInBatches(&rows, 200).
			Error; err != nil {
			return err
		}
		daysUpdated = int64(len(rows))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return daysUpdated, nil
}

// GetAvailability returns the guide's available and booked dates, each sorted
// ascending. Unavailable cells are the background state and are not surfaced.
func (m *AvailabilityManager) GetAvailability(guideID uint) (available, booked []time.Time, err error) {
	var rows []models.GuideAvailability
	err = m.db.
		Model(&models.GuideAvailability{}).
		Select("date", "status").
		Where("guide_id = ? AND status IN ?", guideID, []string{
			string(types.AVAILABILITY_AVAILABLE),
			string(types.AVAILABILITY_BOOKED),
		}).
		Order("date ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, nil, err
	}
	for _, row := range rows {
		if row.Status == string(types.AVAILABILITY_AVAILABLE) {
			available = append(available, row.Date)
		} else {
			booked = append(booked, row.Date)
		}
	}
	return available, booked, nil
}

// SeedCalendar creates default-unavailable cells for every day in [from, to],
// leaving any existing cell untouched. Called once when a guide account is
// created.
func (m *AvailabilityManager) SeedCalendar(guideID uint, from, to time.Time) (int64, error) {
	days := utils.DatesBetween(from, to)
	rows := make([]models.GuideAvailability, 0, len(days))
	for _, day := range days {
		rows = append(rows, models.GuideAvailability{
			GuideID: guideID,
			Date:    day,
			Status:  string(types.AVAILABILITY_UNAVAILABLE),
		})
	}
	res := m.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, 200)
	if res.Error != nil {
		return 0, res.Error
	}
	log.Printf("Seeded calendar for guide %d: %d days\n", guideID, res.RowsAffected)
	return res.RowsAffected, nil
}

// AvailableGuide is one row of the guide search: identity plus rating
// aggregates computed from the booking store.
type AvailableGuide struct {
	GuideID       uint    `json:"guide_id"`
	Username      string  `json:"username"`
	Name          string  `json:"name"`
	Surname       string  `json:"surname"`
	Country       string  `json:"country"`
	Region        string  `json:"region"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int64   `json:"total_reviews"`
}

// FindAvailableGuides lists guides with at least one available day in
// [start, end], optionally filtered by country ("all" disables the filter),
// with a total count and skip/take pagination. Unrated guides report an
// average rating of -1.
func (m *AvailabilityManager) FindAvailableGuides(start, end time.Time, country string, skip, take int) (int64, []AvailableGuide, error) {
	if take <= 0 {
		take = 10
	}
	if skip < 0 {
		skip = 0
	}

	filtered := func() *gorm.DB {
		availableIDs := m.db.
			Model(&models.GuideAvailability{}).
			Select("DISTINCT guide_id").
			Where("status = ? AND date BETWEEN ? AND ?", types.AVAILABILITY_AVAILABLE, start, end)
		q := m.db.
			Model(&models.User{}).
			Where("role = ?", types.ROLE_GUIDE).
			Where("id IN (?)", availableIDs)
		if country != "all" {
			q = q.Where("country = ?", country)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var guides []AvailableGuide
	if err := filtered().
		Select("users.id AS guide_id, users.username, users.name, users.surname, users.country, users.region, COALESCE(AVG(b.rate), -1) AS average_rating").
		Joins("LEFT JOIN bookings b ON b.guide_id = users.id AND b.deleted_at IS NULL").
		Group("users.id, users.username, users.name, users.surname, users.country, users.region").
		Order("users.id ASC").
		Limit(take).
		Offset(skip).
		Scan(&guides).
		Error; err != nil {
		return 0, nil, err
	}

	if len(guides) == 0 {
		return total, guides, nil
	}

	ids := make([]uint, 0, len(guides))
	for _, g := range guides {
		ids = append(ids, g.GuideID)
	}
	var counts []struct {
		GuideID      uint
		TotalReviews int64
	}
	if err := m.db.
		Model(&models.Booking{}).
		Select("guide_id, COUNT(rate) AS total_reviews").
		Where("guide_id IN ? AND rate IS NOT NULL", ids).
		Group("guide_id").
		Scan(&counts).
		Error; err != nil {
		return 0, nil, err
	}
	byGuide := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byGuide[c.GuideID] = c.TotalReviews
	}
	for i := range guides {
		guides[i].TotalReviews = byGuide[guides[i].GuideID]
	}
	return total, guides, nil
}
