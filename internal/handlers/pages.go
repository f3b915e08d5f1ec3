package handlers

import "github.com/gin-gonic/gin"

func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(302, "/admin/login")
	}
}

func AdminLoginPage(c *gin.Context) {
	c.HTML(200, "login.html", gin.H{})
}

func AdminSchoolsPage(c *gin.Context) {
	c.HTML(200, "schools.html", gin.H{})
}

func AdminMenuPage(c *gin.Context) {
	c.HTML(200, "menu.html", gin.H{})
}

func AdminOrdersPage(c *gin.Context) {
	c.HTML(200, "orders.html", gin.H{})
}

func AdminRunSheetPage(c *gin.Context) {
	c.HTML(200, "runsheet.html", gin.H{})
}
