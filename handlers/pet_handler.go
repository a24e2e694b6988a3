package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Piero-design/VETAQP/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type PetHandler struct {
	db *gorm.DB
}

func NewPetHandler(db *gorm.DB) *PetHandler {
	return &PetHandler{db: db}
}

// loadPet fetches the pet and enforces ownership for non-staff callers.
// On failure it writes the error response and reports ok=false.
func (h *PetHandler) loadPet(c echo.Context) (*models.Pet, bool) {
	user := c.Get("user").(*models.User)

	petID, err := strconv.ParseUint(c.Param("petId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid pet id"})
		return nil, false
	}

	var pet models.Pet
	if err := h.db.First(&pet, uint(petID)).Error; err != nil {
		c.JSON(http.StatusNotFound, map[string]string{"error": "pet not found"})
		return nil, false
	}
	if !user.IsStaff && pet.OwnerID != user.ID {
		c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
		return nil, false
	}
	return &pet, true
}

func (h *PetHandler) ListPets(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var pets []models.Pet
	query := h.db.Order("created_at DESC")
	if user.IsStaff {
		if ownerID := c.QueryParam("owner_id"); ownerID != "" {
			query = query.Where("owner_id = ?", ownerID)
		}
	} else {
		query = query.Where("owner_id = ?", user.ID)
	}
	if err := query.Find(&pets).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch pets"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"pets":  pets,
		"total": len(pets),
	})
}

func (h *PetHandler) CreatePet(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var req struct {
		Name    string `json:"name"`
		Species string `json:"species"`
		Age     uint   `json:"age"`
		OwnerID uint   `json:"owner_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Name == "" || req.Species == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and species are required"})
	}

	ownerID := user.ID
	if user.IsStaff && req.OwnerID != 0 {
		ownerID = req.OwnerID
	}

	pet := models.Pet{
		Name:    req.Name,
		Species: req.Species,
		Age:     req.Age,
		OwnerID: ownerID,
	}
	if err := h.db.Create(&pet).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create pet"})
	}
	return c.JSON(http.StatusCreated, pet)
}

func (h *PetHandler) GetPet(c echo.Context) error {
	pet, ok := h.loadPet(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, pet)
}

func (h *PetHandler) UpdatePet(c echo.Context) error {
	pet, ok := h.loadPet(c)
	if !ok {
		return nil
	}

	var req struct {
		Name    *string `json:"name"`
		Species *string `json:"species"`
		Age     *uint   `json:"age"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Name != nil {
		pet.Name = *req.Name
	}
	if req.Species != nil {
		pet.Species = *req.Species
	}
	if req.Age != nil {
		pet.Age = *req.Age
	}

	if err := h.db.Save(pet).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update pet"})
	}
	return c.JSON(http.StatusOK, pet)
}

func (h *PetHandler) DeletePet(c echo.Context) error {
	pet, ok := h.loadPet(c)
	if !ok {
		return nil
	}
	if err := h.db.Delete(pet).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete pet"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "pet deleted"})
}

func (h *PetHandler) ListMedicalRecords(c echo.Context) error {
	pet, ok := h.loadPet(c)
	if !ok {
		return nil
	}

	var records []models.MedicalRecord
	if err := h.db.Where("pet_id = ?", pet.ID).Order("date DESC").Find(&records).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch medical records"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   len(records),
	})
}

// CreateMedicalRecord appends one visit entry to a pet's clinical history. Staff only.
func (h *PetHandler) CreateMedicalRecord(c echo.Context) error {
	pet, ok := h.loadPet(c)
	if !ok {
		return nil
	}

	var req struct {
		Date         string   `json:"date"`
		Diagnosis    string   `json:"diagnosis"`
		Treatment    string   `json:"treatment"`
		Veterinarian string   `json:"veterinarian"`
		Notes        string   `json:"notes"`
		Weight       *float64 `json:"weight"`
		Temperature  *float64 `json:"temperature"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Diagnosis == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "diagnosis is required"})
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		}
		date = parsed
	}

	record := models.MedicalRecord{
		PetID:        pet.ID,
		Date:         date,
		Diagnosis:    req.Diagnosis,
		Treatment:    req.Treatment,
		Veterinarian: req.Veterinarian,
		Notes:        req.Notes,
		Weight:       req.Weight,
		Temperature:  req.Temperature,
	}
	if err := h.db.Create(&record).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create medical record"})
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *PetHandler) ListVaccines(c echo.Context) error {
	pet, ok := h.loadPet(c)
	if !ok {
		return nil
	}

	var vaccines []models.Vaccine
	query := h.db.Where("pet_id = ?", pet.ID).Order("date_administered DESC")
	if c.QueryParam("pending") == "true" {
		query = query.Where("next_dose_date IS NOT NULL AND next_dose_date >= ?", time.Now().Truncate(24*time.Hour))
	}
	if err := query.Find(&vaccines).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch vaccines"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"vaccines": vaccines,
		"total":    len(vaccines),
	})
}

func (h *PetHandler) CreateVaccine(c echo.Context) error {
	pet, ok := h.loadPet(c)
	if !ok {
		return nil
	}

	var req struct {
		VaccineName      string `json:"vaccine_name"`
		DateAdministered string `json:"date_administered"`
		NextDoseDate     string `json:"next_dose_date"`
		Veterinarian     string `json:"veterinarian"`
		BatchNumber      string `json:"batch_number"`
		Notes            string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.VaccineName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "vaccine_name is required"})
	}

	administered := time.Now()
	if req.DateAdministered != "" {
		parsed, err := time.Parse("2006-01-02", req.DateAdministered)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "date_administered must be YYYY-MM-DD"})
		}
		administered = parsed
	}

	vaccine := models.Vaccine{
		PetID:            pet.ID,
		VaccineName:      req.VaccineName,
		DateAdministered: administered,
		Veterinarian:     req.Veterinarian,
		BatchNumber:      req.BatchNumber,
		Notes:            req.Notes,
	}
	if req.NextDoseDate != "" {
		parsed, err := time.Parse("2006-01-02", req.NextDoseDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "next_dose_date must be YYYY-MM-DD"})
		}
		vaccine.NextDoseDate = &parsed
	}

	if err := h.db.Create(&vaccine).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create vaccine"})
	}
	return c.JSON(http.StatusCreated, vaccine)
}
