package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eyekra-backend/internal/config"
	"eyekra-backend/internal/models"
	"eyekra-backend/pkg/utils"
)

// GetProducts - katalog publik, opsional filter kategori
func GetProducts(c *gin.Context) {
	query := config.DB.Model(&models.Product{}).Where("is_active = ?", true)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	limit := utils.StringToInt(c.Query("limit"), 50)

	var products []models.Product
	if err := query.Order("created_at desc").Limit(limit).Find(&products).Error; err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal mengambil produk", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Daftar Produk", products)
}

// GetProductBySlug - detail satu produk
func GetProductBySlug(c *gin.Context) {
	var product models.Product
	err := config.DB.Where("slug = ? AND is_active = ?", c.Param("slug"), true).First(&product).Error
	if err != nil {
		utils.APIResponse(c, http.StatusNotFound, false, "Produk tidak ditemukan", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Detail Produk", product)
}

// CreateProduct - admin katalog menambah produk baru
func CreateProduct(c *gin.Context) {
	var input models.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input Produk Salah", err.Error())
		return
	}

	product := models.Product{
		Name:           input.Name,
		Slug:           input.Slug,
		Description:    input.Description,
		Category:       input.Category,
		Brand:          input.Brand,
		SKU:            input.SKU,
		Price:          input.Price,
		CompareAtPrice: input.CompareAtPrice,
		Images:         input.Images,
		Variants:       input.Variants,
		Attributes:     input.Attributes,
		IsActive:       true,
	}
	if err := config.DB.Create(&product).Error; err != nil {
		utils.APIResponse(c, http.StatusConflict, false, "Slug produk sudah dipakai", nil)
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Produk Berhasil Dibuat!", product)
}
