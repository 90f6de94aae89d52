package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/noel1334/ums-backend-sub003/database"
	"github.com/noel1334/ums-backend-sub003/models"
	"gorm.io/gorm"
)

// --- Hostels ---

type HostelRequest struct {
	Name     string  `json:"name" validate:"required,min=2"`
	Gender   string  `json:"gender" validate:"required,oneof=male female"`
	Location *string `json:"location,omitempty"`
}

func CreateHostel(c *fiber.Ctx) error {
	var req HostelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	hostel := models.Hostel{Name: req.Name, Gender: req.Gender, Location: req.Location}
	if err := database.DB.Create(&hostel).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A hostel with this name already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create hostel"})
	}

	return c.Status(fiber.StatusCreated).JSON(hostel)
}

func GetHostels(c *fiber.Ctx) error {
	var hostels []models.Hostel
	query := database.DB.Order("name asc")
	if gender := c.Query("gender"); gender != "" {
		query = query.Where("gender = ?", gender)
	}
	if err := query.Find(&hostels).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch hostels"})
	}
	return c.JSON(hostels)
}

func GetHostel(c *fiber.Ctx) error {
	var hostel models.Hostel
	if err := database.DB.Preload("Rooms").First(&hostel, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Hostel not found"})
	}
	return c.JSON(hostel)
}

func UpdateHostel(c *fiber.Ctx) error {
	var hostel models.Hostel
	if err := database.DB.First(&hostel, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Hostel not found"})
	}

	var req HostelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	hostel.Name = req.Name
	hostel.Gender = req.Gender
	hostel.Location = req.Location
	if err := database.DB.Save(&hostel).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update hostel"})
	}
	return c.JSON(hostel)
}

// --- Rooms ---

type RoomRequest struct {
	HostelID    uint   `json:"hostel_id" validate:"required"`
	Number      string `json:"number" validate:"required"`
	Capacity    int    `json:"capacity" validate:"required,gt=0"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

func CreateRoom(c *fiber.Ctx) error {
	var req RoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var hostel models.Hostel
	if err := database.DB.First(&hostel, req.HostelID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Hostel not found"})
	}

	room := models.Room{HostelID: req.HostelID, Number: req.Number, Capacity: req.Capacity, IsAvailable: true}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}
	if err := database.DB.Create(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create room"})
	}

	return c.Status(fiber.StatusCreated).JSON(room)
}

// GetRooms lists rooms, optionally for one hostel, with the live
// occupant count for a season when season_id is provided.
func GetRooms(c *fiber.Ctx) error {
	var rooms []models.Room
	query := database.DB.Preload("Hostel").Order("number asc")
	if hostelID := c.Query("hostel_id"); hostelID != "" {
		query = query.Where("hostel_id = ?", hostelID)
	}
	if err := query.Find(&rooms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch rooms"})
	}

	seasonID := c.Query("season_id")
	if seasonID == "" {
		return c.JSON(rooms)
	}

	sid, err := strconv.ParseUint(seasonID, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid season_id"})
	}

	type RoomWithOccupancy struct {
		models.Room
		Occupants int64 `json:"occupants"`
	}
	out := make([]RoomWithOccupancy, 0, len(rooms))
	for _, room := range rooms {
		count, err := bookingSvc.Occupancy(database.DB, room.ID, uint(sid))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count occupants"})
		}
		out = append(out, RoomWithOccupancy{Room: room, Occupants: count})
	}
	return c.JSON(out)
}

func UpdateRoom(c *fiber.Ctx) error {
	var room models.Room
	if err := database.DB.First(&room, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Room not found"})
	}

	var req RoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	room.HostelID = req.HostelID
	room.Number = req.Number
	room.Capacity = req.Capacity
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}
	if err := database.DB.Save(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update room"})
	}
	return c.JSON(room)
}

// --- Seasons ---

type SeasonRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	IsOpen    *bool  `json:"is_open,omitempty"`
}

func CreateSeason(c *fiber.Ctx) error {
	var req SeasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date, use YYYY-MM-DD"})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date, use YYYY-MM-DD"})
	}
	if !end.After(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be after start_date"})
	}

	season := models.Season{Name: req.Name, StartDate: start, EndDate: end}
	if req.IsOpen != nil {
		season.IsOpen = *req.IsOpen
	}
	if err := database.DB.Create(&season).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A season with this name already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create season"})
	}
	return c.Status(fiber.StatusCreated).JSON(season)
}

func GetSeasons(c *fiber.Ctx) error {
	var seasons []models.Season
	query := database.DB.Order("start_date desc")
	if c.Query("open") == "true" {
		query = query.Where("is_open = ?", true)
	}
	if err := query.Find(&seasons).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch seasons"})
	}
	return c.JSON(seasons)
}

func UpdateSeason(c *fiber.Ctx) error {
	var season models.Season
	if err := database.DB.First(&season, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Season not found"})
	}

	type SeasonUpdateRequest struct {
		Name      *string `json:"name,omitempty"`
		StartDate *string `json:"start_date,omitempty"`
		EndDate   *string `json:"end_date,omitempty"`
		IsOpen    *bool   `json:"is_open,omitempty"`
	}
	var req SeasonUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Name != nil {
		season.Name = *req.Name
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date, use YYYY-MM-DD"})
		}
		season.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date, use YYYY-MM-DD"})
		}
		season.EndDate = end
	}
	if req.IsOpen != nil {
		season.IsOpen = *req.IsOpen
	}

	if err := database.DB.Save(&season).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update season"})
	}
	return c.JSON(season)
}

// --- Fees ---

type FeeRequest struct {
	HostelID uint    `json:"hostel_id" validate:"required"`
	RoomID   *uint   `json:"room_id,omitempty"`
	SeasonID uint    `json:"season_id" validate:"required"`
	Gender   string  `json:"gender" validate:"required,oneof=male female"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

func CreateFee(c *fiber.Ctx) error {
	var req FeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var hostel models.Hostel
	if err := database.DB.First(&hostel, req.HostelID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Hostel not found"})
	}
	if req.RoomID != nil {
		var room models.Room
		if err := database.DB.Where("id = ? AND hostel_id = ?", *req.RoomID, req.HostelID).First(&room).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Room not found in this hostel"})
		}
	}

	fee := models.HostelFee{
		HostelID: req.HostelID,
		RoomID:   req.RoomID,
		SeasonID: req.SeasonID,
		Gender:   req.Gender,
		Amount:   req.Amount,
	}
	if err := database.DB.Create(&fee).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create fee"})
	}
	return c.Status(fiber.StatusCreated).JSON(fee)
}

func GetFees(c *fiber.Ctx) error {
	var fees []models.HostelFee
	query := database.DB.Preload("Hostel").Preload("Season")
	if hostelID := c.Query("hostel_id"); hostelID != "" {
		query = query.Where("hostel_id = ?", hostelID)
	}
	if seasonID := c.Query("season_id"); seasonID != "" {
		query = query.Where("season_id = ?", seasonID)
	}
	if err := query.Find(&fees).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch fees"})
	}
	return c.JSON(fees)
}

// --- Term fee standing ---

type TermFeeRequest struct {
	StudentID  uint    `json:"student_id" validate:"required"`
	SeasonID   uint    `json:"season_id" validate:"required"`
	AmountDue  float64 `json:"amount_due" validate:"required,gt=0"`
	AmountPaid float64 `json:"amount_paid" validate:"gte=0"`
}

// RecordTermFeePayment lets staff record a student's school-fee standing
// for a season. A fully paid row unlocks hostel booking.
func RecordTermFeePayment(c *fiber.Ctx) error {
	var req TermFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var student models.User
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	status := "pending"
	if req.AmountPaid >= req.AmountDue {
		status = "paid"
	} else if req.AmountPaid > 0 {
		status = "partial"
	}

	var record models.TermFeePayment
	err := database.DB.Where("student_id = ? AND season_id = ?", req.StudentID, req.SeasonID).First(&record).Error
	if err == nil {
		record.AmountDue = req.AmountDue
		record.AmountPaid = req.AmountPaid
		record.Status = status
		if err := database.DB.Save(&record).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update term fee record"})
		}
		return c.JSON(record)
	}

	record = models.TermFeePayment{
		StudentID:  req.StudentID,
		SeasonID:   req.SeasonID,
		AmountDue:  req.AmountDue,
		AmountPaid: req.AmountPaid,
		Status:     status,
	}
	if err := database.DB.Create(&record).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create term fee record"})
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}
