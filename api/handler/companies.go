package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/founderscope/models"
	"github.com/use-agent/founderscope/store"
)

// ListCompanies returns a handler for GET /api/v1/companies.
// Pass ?full=true to include the records, not just their names.
func ListCompanies(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.CompanyListResponse{
			Success: true,
			Names:   st.Names(),
		}
		resp.Total = len(resp.Names)
		if c.Query("full") == "true" {
			resp.Companies = st.All()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetCompany returns a handler for GET /api/v1/companies/:name.
func GetCompany(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		company, ok := st.Get(name)
		if !ok {
			c.JSON(http.StatusNotFound, models.CompanyResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeNotFound,
					Message: "no company named " + name,
				},
			})
			return
		}
		c.JSON(http.StatusOK, models.CompanyResponse{Success: true, Company: company})
	}
}
