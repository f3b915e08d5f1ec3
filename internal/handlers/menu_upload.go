package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*
=======================
  INPUT STRUCT
=======================
*/

type MultipartMenuItemInput struct {
	Name           string
	NameSet        bool
	Price          float64
	PriceSet       bool
	Type           string
	TypeSet        bool
	Description    string
	DescriptionSet bool
	Allergens      []string
	AllergensSet   bool
	ImagePath      string
	ImageSet       bool
	IsActive       bool
	IsActiveSet    bool
	IsFeatured     bool
	IsFeaturedSet  bool
}

/*
=======================
  PARSER
=======================
*/

func parseMultipartMenuItemRequest(c *gin.Context) (MultipartMenuItemInput, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		log.Println("[UPLOAD] [ERROR] multipart parse failed:", err)
		return MultipartMenuItemInput{}, err
	}

	input := MultipartMenuItemInput{}

	// ---- STRING FIELDS ----

	if value, ok := c.GetPostForm("name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}

	if value, ok := c.GetPostForm("type"); ok {
		input.Type = strings.ToLower(strings.TrimSpace(value))
		input.TypeSet = true
	}

	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}

	// ---- NUMBER FIELDS ----

	if value, ok := c.GetPostForm("price"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return MultipartMenuItemInput{}, err
		}
		input.Price = parsed
		input.PriceSet = true
	}

	// ---- BOOL FIELDS ----

	if value, ok := c.GetPostForm("isActive"); ok {
		parsed, err := parseBoolValue(value)
		if err != nil {
			return MultipartMenuItemInput{}, err
		}
		input.IsActive = parsed
		input.IsActiveSet = true
	}

	if value, ok := c.GetPostForm("isFeatured"); ok {
		parsed, err := parseBoolValue(value)
		if err != nil {
			return MultipartMenuItemInput{}, err
		}
		input.IsFeatured = parsed
		input.IsFeaturedSet = true
	}

	// ---- ALLERGENS ----

	allergens := c.PostFormArray("allergens")
	if len(allergens) > 0 {
		input.Allergens = allergens
		input.AllergensSet = true
	}

	// ---- IMAGE FILE ----

	file, err := c.FormFile("image")
	if err == nil {
		imagePath, err := saveImage(file)
		if err != nil {
			return MultipartMenuItemInput{}, err
		}
		input.ImagePath = imagePath
		input.ImageSet = true
	} else {
		// tolerant check, gin versions report missing files differently
		if !errors.Is(err, http.ErrMissingFile) &&
			!strings.Contains(err.Error(), "no such file") {
			return MultipartMenuItemInput{}, err
		}
	}

	return input, nil
}

/*
=======================
  IMAGE SAVE
=======================
*/

func saveImage(file *multipart.FileHeader) (string, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return "", fmt.Errorf("image file extension is required")
	}
	allowedExtensions := map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".webp": {},
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return "", fmt.Errorf("unsupported image type: %s", extension)
	}
	const maxImageSize = 5 << 20
	if file.Size > maxImageSize {
		return "", fmt.Errorf("image file too large (max 5MB)")
	}

	filename := primitive.NewObjectID().Hex() + extension

	dir := filepath.Join(publicRootDir, "uploads", "menu")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] [ERROR] saveImage: failed to create directory %s: %v", dir, err)
		return "", err
	}

	fullPath := filepath.Join(dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] [ERROR] saveImage: failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		log.Printf("[UPLOAD] [ERROR] saveImage: failed to open upload %s: %v", file.Filename, err)
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		log.Printf("[UPLOAD] [ERROR] saveImage: failed to save file %s: %v", fullPath, err)
		return "", err
	}

	// path stored in the DB
	return filepath.ToSlash(filepath.Join("uploads", "menu", filename)), nil
}

/*
=======================
  HELPERS
=======================
*/

func parseBoolValue(value string) (bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "on" {
		return true, nil
	}
	return strconv.ParseBool(value)
}

func respondMultipartError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
