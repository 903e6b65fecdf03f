// token emite un JWT firmado con JWT_SECRET para operar la API (no hay login de usuarios).
//
// Uso: go run ./cmd/token -role admin -sub alice [-exp 480]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Cantina-api/pkg/config"
	"github.com/jhoicas/Cantina-api/pkg/jwt"
)

func main() {
	role := flag.String("role", jwt.RoleCaixa, "rol del token: admin | caixa")
	sub := flag.String("sub", "", "identificador del operador (obligatorio)")
	exp := flag.Int("exp", 0, "minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	if *sub == "" {
		fmt.Fprintln(os.Stderr, "uso: token -role admin|caixa -sub <operador> [-exp minutos]")
		os.Exit(2)
	}
	if *role != jwt.RoleAdmin && *role != jwt.RoleCaixa {
		fmt.Fprintf(os.Stderr, "rol desconocido %q (admin|caixa)\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	minutes := cfg.JWT.Expiration
	if *exp > 0 {
		minutes = *exp
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *sub, *role, cfg.JWT.Issuer, minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Firmar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
