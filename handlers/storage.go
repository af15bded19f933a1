package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"unicode"

	"campusbite/backend/gormstore"

	"github.com/gin-gonic/gin"
)

// ServeFile serves files kept by the embedded driver at their view URL.
func ServeFile(files *gormstore.DiskFiles) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("bucket") != files.Bucket {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bucket not found"})
			return
		}
		p, err := files.Path(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.File(p)
	}
}

var avatarColors = []string{"#e76f51", "#2a9d8f", "#264653", "#f4a261", "#8e7dbe", "#3a86ff"}

// InitialsAvatar draws the initials of ?name= as an SVG badge.
func InitialsAvatar(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	initials := initialsOf(name)
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	color := avatarColors[sum%len(avatarColors)]

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100">`+
		`<rect width="100" height="100" fill="%s"/>`+
		`<text x="50" y="50" dy=".35em" text-anchor="middle" font-family="sans-serif" font-size="40" fill="#fff">%s</text>`+
		`</svg>`, color, html.EscapeString(initials))
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

func initialsOf(name string) string {
	var out []rune
	for _, word := range strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-' || r == '.'
	}) {
		out = append(out, unicode.ToUpper([]rune(word)[0]))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
