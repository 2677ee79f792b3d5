package main

// @title Tarot Reading APIs
// @version 1.0
// @description Greek Cross five-card tarot readings with model-backed interpretation.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http
import (
	_ "tarot-reading/docs"
	protocol "tarot-reading/protocal"

	_ "github.com/arsmn/fiber-swagger/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	err := protocol.ServeHTTP()
	if err != nil {
		logrus.Println(err)
	}
}
