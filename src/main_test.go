package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ygb/src/models"
	"ygb/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB     *gorm.DB
	Router *gin.Engine

	Guide    models.User
	Traveler models.User
	Rival    models.User
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("wiredate", wireDateValidatorFunc)
	}

	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("error opening sqlite: %s", err.Error())
	}
	inner, err := d.DB()
	if err != nil {
		log.Fatalf("error accessing inner db instance: %s", err.Error())
	}
	inner.SetMaxOpenConns(1)

	if err := d.AutoMigrate(
		&models.User{},
		&models.GuideAvailability{},
		&models.Booking{},
	); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	s.DB = d

	s.Guide = models.User{Name: "Giorgos", Surname: "Papadopoulos", Username: "giorgos", Email: "giorgos@example.com", Role: string(types.ROLE_GUIDE), Country: "Greece"}
	s.Traveler = models.User{Name: "Anna", Surname: "Schmidt", Username: "anna", Email: "anna@example.com", Role: string(types.ROLE_TRAVELER), Country: "Germany"}
	s.Rival = models.User{Name: "Marco", Surname: "Rossi", Username: "marco", Email: "marco@example.com", Role: string(types.ROLE_TRAVELER), Country: "Italy"}
	for _, u := range []*models.User{&s.Guide, &s.Traveler, &s.Rival} {
		if err := d.Create(u).Error; err != nil {
			log.Fatalf("Could not create user due to error: %s", err.Error())
		}
	}

	router := setupRouter()
	mountRoutes(router, d)
	s.Router = router
}

func (s *TestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.T().Fatalf("encode body: %s", err.Error())
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *TestSuite) TestPing() {
	w := s.request(http.MethodGet, "/ping", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "Server is alive", w.Body.String())
}

func (s *TestSuite) TestAvailabilityUpdateRoundTrip() {
	w := s.request(http.MethodPost, "/Availability/Update", gin.H{
		"guide_id":   s.Guide.ID,
		"start_date": "01.06.2027",
		"end_date":   "05.06.2027",
		"status":     "available",
	})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.True(s.T(), gjson.Get(body, "success").Bool())
	assert.Equal(s.T(), int64(5), gjson.Get(body, "daysUpdated").Int())

	w = s.request(http.MethodGet, fmt.Sprintf("/Availability/Guide/%d", s.Guide.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	body = w.Body.String()
	available := gjson.Get(body, "availableDates").Array()
	require.GreaterOrEqual(s.T(), len(available), 5)
	found := map[string]bool{}
	for _, v := range available {
		found[v.String()] = true
	}
	for _, day := range []string{"01.06.2027", "02.06.2027", "03.06.2027", "04.06.2027", "05.06.2027"} {
		assert.True(s.T(), found[day], "missing %s", day)
	}
}

func (s *TestSuite) TestAvailabilityUpdateValidation() {
	w := s.request(http.MethodPost, "/Availability/Update", gin.H{
		"guide_id":   s.Guide.ID,
		"start_date": "2027-06-01",
		"end_date":   "05.06.2027",
		"status":     "available",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPost, "/Availability/Update", gin.H{
		"guide_id":   s.Guide.ID,
		"start_date": "05.06.2027",
		"end_date":   "01.06.2027",
		"status":     "available",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPost, "/Availability/Update", gin.H{
		"guide_id":   s.Guide.ID,
		"start_date": "01.06.2027",
		"end_date":   "05.06.2027",
		"status":     "busy",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPost, "/Availability/Update", gin.H{
		"guide_id":   99999,
		"start_date": "01.06.2027",
		"end_date":   "05.06.2027",
		"status":     "available",
	})
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *TestSuite) TestBookingLifecycleOverHTTP() {
	day := "10.07.2027"
	w := s.request(http.MethodPost, "/Availability/Update", gin.H{
		"guide_id":   s.Guide.ID,
		"start_date": day,
		"end_date":   day,
		"status":     "available",
	})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/Bookings/Request", gin.H{
		"guide_id":    s.Guide.ID,
		"traveler_id": s.Traveler.ID,
		"date":        day,
	})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	bookingID := gjson.Get(w.Body.String(), "booking_id").Uint()
	require.NotZero(s.T(), bookingID)

	// Second traveler while the request is pending.
	w = s.request(http.MethodPost, "/Bookings/Request", gin.H{
		"guide_id":    s.Guide.ID,
		"traveler_id": s.Rival.ID,
		"date":        day,
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
	assert.Contains(s.T(), gjson.Get(w.Body.String(), "message").String(), "in flight")

	w = s.request(http.MethodPost, "/Bookings/Accept", gin.H{"booking_id": bookingID})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())

	// Second traveler after confirmation.
	w = s.request(http.MethodPost, "/Bookings/Request", gin.H{
		"guide_id":    s.Guide.ID,
		"traveler_id": s.Rival.ID,
		"date":        day,
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
	assert.Contains(s.T(), gjson.Get(w.Body.String(), "message").String(), "already booked")

	// The calendar now shows the day as booked.
	w = s.request(http.MethodGet, fmt.Sprintf("/Availability/Guide/%d", s.Guide.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	booked := gjson.Get(w.Body.String(), "bookedDates").Array()
	foundBooked := false
	for _, v := range booked {
		if v.String() == day {
			foundBooked = true
		}
	}
	assert.True(s.T(), foundBooked)

	// A range update over the booked day is rejected with the conflict payload.
	w = s.request(http.MethodPost, "/Availability/Update", gin.H{
		"guide_id":   s.Guide.ID,
		"start_date": "08.07.2027",
		"end_date":   "12.07.2027",
		"status":     "unavailable",
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
	conflictDates := gjson.Get(w.Body.String(), "bookedDates").Array()
	require.Len(s.T(), conflictDates, 1)
	assert.Equal(s.T(), day, conflictDates[0].String())

	// Traveler cancels; the slot reopens.
	w = s.request(http.MethodPost, "/Bookings/Traveler/CancelBooking", gin.H{
		"booking_id":  bookingID,
		"traveler_id": s.Traveler.ID,
	})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/Bookings/Request", gin.H{
		"guide_id":    s.Guide.ID,
		"traveler_id": s.Rival.ID,
		"date":        day,
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
}

func (s *TestSuite) TestBookingActionValidation() {
	w := s.request(http.MethodPost, "/Bookings/Accept", gin.H{})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.request(http.MethodPost, "/Bookings/Accept", gin.H{"booking_id": 99999})
	assert.Equal(s.T(), http.StatusNotFound, w.Code)

	w = s.request(http.MethodPost, "/Bookings/Traveler/LeaveReview", gin.H{
		"booking_id":  1,
		"traveler_id": s.Traveler.ID,
		"rate":        9,
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *TestSuite) TestTravelerBookingsListing() {
	w := s.request(http.MethodGet, "/Bookings/TravelerBookings", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/Bookings/TravelerBookings?traveler_id=%d", s.Traveler.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	assert.True(s.T(), gjson.Valid(w.Body.String()))
}

func (s *TestSuite) TestCreateUserSeedsGuideCalendar() {
	s.T().Setenv("CALENDAR_SEED_DAYS", "14")

	w := s.request(http.MethodPost, "/Users/CreateNewUser", gin.H{
		"name":     "New",
		"surname":  "Guide",
		"username": "new_guide",
		"email":    "new_guide@example.com",
		"role":     "guide",
		"country":  "Greece",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	userID := gjson.Get(w.Body.String(), "userId").Uint()
	require.NotZero(s.T(), userID)

	var count int64
	require.NoError(s.T(), s.DB.Model(&models.GuideAvailability{}).Where("guide_id = ?", userID).Count(&count).Error)
	assert.Equal(s.T(), int64(14), count)

	var row models.GuideAvailability
	require.NoError(s.T(), s.DB.Where("guide_id = ?", userID).Order("date ASC").First(&row).Error)
	assert.Equal(s.T(), string(types.AVAILABILITY_UNAVAILABLE), row.Status)

	// Duplicate email.
	w = s.request(http.MethodPost, "/Users/CreateNewUser", gin.H{
		"name":     "New",
		"surname":  "Guide",
		"username": "other_name",
		"email":    "new_guide@example.com",
		"role":     "guide",
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
	assert.Equal(s.T(), int64(4), gjson.Get(w.Body.String(), "errorCode").Int())

	// Duplicate username.
	w = s.request(http.MethodPost, "/Users/CreateNewUser", gin.H{
		"name":     "New",
		"surname":  "Guide",
		"username": "new_guide",
		"email":    "fresh@example.com",
		"role":     "guide",
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
	assert.Equal(s.T(), int64(7), gjson.Get(w.Body.String(), "errorCode").Int())

	// Non-English name.
	w = s.request(http.MethodPost, "/Users/CreateNewUser", gin.H{
		"name":     "Γιώργος",
		"surname":  "Guide",
		"username": "greek_guide",
		"email":    "greek@example.com",
		"role":     "guide",
	})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *TestSuite) TestAdminRunSweep() {
	w := s.request(http.MethodPost, "/Admin/RunSweep", nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.True(s.T(), gjson.Get(body, "success").Bool())
	assert.True(s.T(), gjson.Get(body, "bookings_completed").Exists())
	assert.True(s.T(), gjson.Get(body, "dates_expired").Exists())
}

func (s *TestSuite) TestGuideReviewsEmpty() {
	w := s.request(http.MethodGet, fmt.Sprintf("/GuideReviews/%d", s.Guide.ID), nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.True(s.T(), gjson.Get(w.Body.String(), "success").Bool())
}

func (s *TestSuite) TestAvailableGuidesSearch() {
	day := "20.08.2027"
	w := s.request(http.MethodPost, "/Availability/Update", gin.H{
		"guide_id":   s.Guide.ID,
		"start_date": day,
		"end_date":   day,
		"status":     "available",
	})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodGet, "/AvailableGuides?start=20.08.2027&end=20.08.2027&country=Greece", nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Equal(s.T(), int64(1), gjson.Get(body, "total_available_guides").Int())
	assert.Equal(s.T(), "giorgos", gjson.Get(body, "guides.0.username").String())
	assert.Equal(s.T(), float64(-1), gjson.Get(body, "guides.0.average_rating").Float())

	w = s.request(http.MethodGet, "/AvailableGuides?start=20.08.2027&end=20.08.2027", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *TestSuite) TestSweepAgesStateOverHTTP() {
	// Seed a confirmed booking in the past directly; requests for past dates
	// still go through the same engine.
	day := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(s.T(), s.DB.Create(&models.GuideAvailability{
		GuideID: s.Guide.ID,
		Date:    day,
		Status:  string(types.AVAILABILITY_BOOKED),
	}).Error)
	booking := models.Booking{
		GuideID:    s.Guide.ID,
		TravelerID: s.Traveler.ID,
		BookedDate: day,
		Status:     string(types.BOOKING_CONFIRMED),
	}
	require.NoError(s.T(), s.DB.Create(&booking).Error)

	w := s.request(http.MethodPost, "/Admin/RunSweep", nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	assert.GreaterOrEqual(s.T(), gjson.Get(w.Body.String(), "bookings_completed").Int(), int64(1))

	var swept models.Booking
	require.NoError(s.T(), s.DB.First(&swept, booking.ID).Error)
	assert.Equal(s.T(), string(types.BOOKING_COMPLETED), swept.Status, "unexpected status")
}

func (s *TestSuite) TestCreateUserConstraintBackstop() {
	w := s.request(http.MethodPost, "/Users/CreateNewUser", gin.H{
		"name":     "Gone",
		"surname":  "Traveler",
		"username": "ghost",
		"email":    "ghost@example.com",
		"role":     "traveler",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	userID := gjson.Get(w.Body.String(), "userId").Uint()
	require.NotZero(s.T(), userID)

	// A soft-deleted row is invisible to the duplicate pre-checks but still
	// occupies the unique indexes, same as a concurrent create that wins the
	// race: the loser must get the duplicate contract, not a 500.
	require.NoError(s.T(), s.DB.Delete(&models.User{}, userID).Error)

	w = s.request(http.MethodPost, "/Users/CreateNewUser", gin.H{
		"name":     "Gone",
		"surname":  "Traveler",
		"username": "ghost_two",
		"email":    "ghost@example.com",
		"role":     "traveler",
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(s.T(), int64(4), gjson.Get(w.Body.String(), "errorCode").Int())

	w = s.request(http.MethodPost, "/Users/CreateNewUser", gin.H{
		"name":     "Gone",
		"surname":  "Traveler",
		"username": "ghost",
		"email":    "ghost_two@example.com",
		"role":     "traveler",
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(s.T(), int64(7), gjson.Get(w.Body.String(), "errorCode").Int())
}

// Guide creation and calendar seeding are one transaction: when seeding cannot
// write, the user row must not survive either.
func TestCreateGuideRollsBackWhenSeedingFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	inner, err := d.DB()
	require.NoError(t, err)
	inner.SetMaxOpenConns(1)
	// No guide_availabilities table, so seeding fails mid-transaction.
	require.NoError(t, d.AutoMigrate(&models.User{}, &models.Booking{}))

	router := setupRouter()
	mountRoutes(router, d)

	payload, err := json.Marshal(gin.H{
		"name":     "Orphan",
		"surname":  "Guide",
		"username": "orphan_guide",
		"email":    "orphan@example.com",
		"role":     "guide",
		"country":  "Greece",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/Users/CreateNewUser", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
	var count int64
	require.NoError(t, d.Model(&models.User{}).Where("username = ?", "orphan_guide").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSuiteRun(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
