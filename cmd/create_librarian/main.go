package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/MANUEL666GAMER/Biblioteca/model"
	authrepo "github.com/MANUEL666GAMER/Biblioteca/repository/auth"
	authsvc "github.com/MANUEL666GAMER/Biblioteca/service/auth"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
	"github.com/MANUEL666GAMER/Biblioteca/util/database"
)

// Seeds the first librarian account; the register endpoint needs a token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using existing environment variables")
	}

	name := flag.String("name", "Administrador", "display name")
	email := flag.String("email", "admin@biblioteca.local", "login email")
	password := flag.String("password", "", "login password (min 6 chars)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("LIBRARIAN_PASSWORD")
	}
	if len(*password) < 6 {
		log.Fatal("password must be at least 6 characters (-password or LIBRARIAN_PASSWORD)")
	}

	ctx := context.Background()
	db, err := database.New(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	svc := authsvc.New(authrepo.New(db.SQL), "", 0)
	l, err := svc.Register(ctx, model.RegisterReq{Name: *name, Email: *email, Password: *password})
	if apperr.Code(err) == apperr.ErrEmailTaken {
		fmt.Printf("Librarian %s already exists\n", *email)
		return
	}
	if err != nil {
		log.Fatalf("Failed to create librarian: %v", err)
	}

	fmt.Printf("Created librarian %s (id %d)\n", l.Email, l.ID)
}
