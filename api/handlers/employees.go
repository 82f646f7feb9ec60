package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workstackhq/workstack/internal/enum"
	"github.com/workstackhq/workstack/internal/models"
	"github.com/workstackhq/workstack/internal/tracing"
	"github.com/workstackhq/workstack/services/employee"
)

const maxPhotoSize = 5 << 20 // 5 MiB

type createEmployeeRequest struct {
	UserID               string         `json:"userId" binding:"required"`
	FirstName            string         `json:"firstName" binding:"required"`
	LastName             string         `json:"lastName"`
	Role                 string         `json:"role"`
	ManagerID            *string        `json:"managerId"`
	EmploymentDate       *time.Time     `json:"employmentDate"`
	ContractType         string         `json:"contractType"`
	ContractEndDate      *time.Time     `json:"contractEndDate"`
	IdentificationNumber string         `json:"identificationNumber"`
	PhoneNumber          string         `json:"phoneNumber"`
	BusinessPhoneNumber  string         `json:"businessPhoneNumber"`
	Attributes           models.JSONMap `json:"attributes"`
}

func CreateEmployee(s *employee.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "CreateEmployee", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var req createEmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		created, err := s.Create(ctx, employee.CreateRequest{
			UserID:               req.UserID,
			FirstName:            req.FirstName,
			LastName:             req.LastName,
			Role:                 enum.DecodeEmployeeRole(req.Role),
			ManagerID:            req.ManagerID,
			EmploymentDate:       req.EmploymentDate,
			ContractType:         enum.DecodeContractType(req.ContractType),
			ContractEndDate:      req.ContractEndDate,
			IdentificationNumber: req.IdentificationNumber,
			PhoneNumber:          req.PhoneNumber,
			BusinessPhoneNumber:  req.BusinessPhoneNumber,
			Attributes:           req.Attributes,
		})
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func ListEmployees(s *employee.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListEmployees", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		employees, err := s.List(ctx)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"employees": employees})
	}
}

func GetEmployee(s *employee.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetEmployee", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		found, err := s.GetByID(ctx, c.Param("id"))
		if err != nil {
			respondError(c, span, err)
			return
		}
		if found == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"employee": found,
			"photoUrl": s.PhotoURL(found),
		})
	}
}

type updateEmployeeRequest struct {
	FirstName            *string        `json:"firstName"`
	LastName             *string        `json:"lastName"`
	Role                 *string        `json:"role"`
	ManagerID            *string        `json:"managerId"`
	EmploymentDate       *time.Time     `json:"employmentDate"`
	TerminationDate      *time.Time     `json:"terminationDate"`
	ContractType         *string        `json:"contractType"`
	ContractEndDate      *time.Time     `json:"contractEndDate"`
	IdentificationNumber *string        `json:"identificationNumber"`
	PhoneNumber          *string        `json:"phoneNumber"`
	BusinessPhoneNumber  *string        `json:"businessPhoneNumber"`
	Attributes           models.JSONMap `json:"attributes"`
}

func UpdateEmployee(s *employee.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "UpdateEmployee", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		var req updateEmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, span, err)
			return
		}

		update := employee.UpdateRequest{
			FirstName:            req.FirstName,
			LastName:             req.LastName,
			ManagerID:            req.ManagerID,
			EmploymentDate:       req.EmploymentDate,
			TerminationDate:      req.TerminationDate,
			ContractEndDate:      req.ContractEndDate,
			IdentificationNumber: req.IdentificationNumber,
			PhoneNumber:          req.PhoneNumber,
			BusinessPhoneNumber:  req.BusinessPhoneNumber,
			Attributes:           req.Attributes,
		}
		if req.Role != nil {
			role := enum.DecodeEmployeeRole(*req.Role)
			update.Role = &role
		}
		if req.ContractType != nil {
			contract := enum.DecodeContractType(*req.ContractType)
			update.ContractType = &contract
		}

		updated, err := s.Update(ctx, c.Param("id"), update)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

type terminateEmployeeRequest struct {
	TerminationDate *time.Time `json:"terminationDate"`
}

func TerminateEmployee(s *employee.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "TerminateEmployee", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		var req terminateEmployeeRequest
		// The body is optional; an empty one terminates as of now.
		_ = c.ShouldBindJSON(&req)

		terminated, err := s.Terminate(ctx, c.Param("id"), req.TerminationDate)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, terminated)
	}
}

func UploadEmployeePhoto(s *employee.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "UploadEmployeePhoto", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)
		tracing.TagEntity(span, c.Param("id"))

		file, header, err := c.Request.FormFile("photo")
		if err != nil {
			badRequest(c, span, err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize+1))
		if err != nil {
			badRequest(c, span, err)
			return
		}
		if len(data) > maxPhotoSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo exceeds size limit"})
			return
		}

		contentType := header.Header.Get("Content-Type")
		updated, err := s.UploadPhoto(ctx, c.Param("id"), data, contentType, header.Filename)
		if err != nil {
			respondError(c, span, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"employee": updated,
			"photoUrl": s.PhotoURL(updated),
		})
	}
}
