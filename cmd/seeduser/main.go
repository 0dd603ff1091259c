// cmd/seeduser/main.go: crea/actualiza el usuario administrador inicial.
// Uso: go run ./cmd/seeduser -rut 11.111.111-1 -password secreto
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"taller/internal/config"
	"taller/internal/infra"
	"taller/internal/model"
	"taller/internal/service"
)

func main() {
	rut := flag.String("rut", "11.111.111-1", "RUT del administrador")
	password := flag.String("password", "1234", "contraseña inicial")
	nombre := flag.String("nombre", "Administrador", "nombre visible")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}

	normalizado := service.NormalizarRUT(*rut)
	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (id, rut, nombre, password_hash, rol, activo, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, ?, true, now(), now())
		ON CONFLICT (rut) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nombre = EXCLUDED.nombre,
		    rol = EXCLUDED.rol,
		    activo = true,
		    updated_at = now()
	`, normalizado, *nombre, hash, model.RolAdmin)

	if result.Error != nil {
		log.Fatalf("insert error: %v", result.Error)
	}
	fmt.Printf("Usuario '%s' creado/actualizado con rol %s\n", normalizado, model.RolAdmin)
}
