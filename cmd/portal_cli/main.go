package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"job-portal/internal/config"
	"job-portal/internal/domain"
	"job-portal/internal/gateway"
	"job-portal/internal/guard"
	"job-portal/internal/session"
	"job-portal/internal/store"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadPortalConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	path := cfg.SessionFile
	if path == "" {
		path = store.DefaultSessionFile()
	}
	credStore, err := store.NewFileStore(path)
	if err != nil {
		log.Fatal(err)
	}

	gw := gateway.NewHTTPGateway(cfg.APIBaseURL, cfg.APITimeout, logger)
	mgr := session.NewManager(logger, gw, credStore, nil, nil)
	defer mgr.Dispose()

	fmt.Println("Validando sesion guardada...")
	mgr.Initialize(ctx)
	printStatus(mgr)

	for {
		fmt.Println()
		fmt.Println("[1] Login con password")
		fmt.Println("[2] Login con codigo por email")
		fmt.Println("[3] Crear cuenta")
		fmt.Println("[4] Ver sesion")
		fmt.Println("[5] Refrescar usuario")
		fmt.Println("[6] Logout")
		fmt.Println("[7] Salir")
		fmt.Print("Selecciona una opcion: ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		switch strings.TrimSpace(line) {
		case "1":
			passwordFlow(ctx, reader, mgr)
		case "2":
			otpFlow(ctx, reader, mgr)
		case "3":
			signupFlow(ctx, reader, mgr)
		case "4":
			printStatus(mgr)
		case "5":
			if _, err := mgr.RefreshUser(ctx); err != nil {
				printError(err)
			}
			printStatus(mgr)
		case "6":
			mgr.Logout(ctx)
			fmt.Println("Sesion cerrada.")
		case "7":
			return
		default:
			fmt.Println("Opcion invalida.")
		}
	}
}

func passwordFlow(ctx context.Context, reader *bufio.Reader, mgr *session.Manager) {
	emailAddr := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")
	remember := strings.EqualFold(prompt(reader, "Recordarme? [s/N]: "), "s")

	ok, err := mgr.Login(ctx, emailAddr, password, remember)
	reportAcquired(mgr, ok, err)
}

func otpFlow(ctx context.Context, reader *bufio.Reader, mgr *session.Manager) {
	emailAddr := prompt(reader, "Email: ")
	if err := mgr.RequestLoginCode(ctx, emailAddr); err != nil {
		printError(err)
		return
	}
	fmt.Println("Te enviamos un codigo de 6 digitos.")
	code := prompt(reader, "Codigo: ")

	ok, err := mgr.LoginWithOTP(ctx, emailAddr, code)
	reportAcquired(mgr, ok, err)
}

func signupFlow(ctx context.Context, reader *bufio.Reader, mgr *session.Manager) {
	in := session.SignupInput{
		Name:     prompt(reader, "Nombre: "),
		Email:    prompt(reader, "Email: "),
		Password: prompt(reader, "Password: "),
	}
	role, ok := domain.ParseRole(prompt(reader, "Rol (employee/employer/admin): "))
	if !ok {
		fmt.Println("Rol invalido.")
		return
	}
	in.Role = role
	in.Phone = prompt(reader, "Telefono (opcional): ")
	switch role {
	case domain.RoleEmployer:
		in.CompanyName = prompt(reader, "Empresa: ")
	case domain.RoleEmployee:
		if skills := prompt(reader, "Skills separadas por coma (opcional): "); skills != "" {
			for _, s := range strings.Split(skills, ",") {
				if s = strings.TrimSpace(s); s != "" {
					in.Skills = append(in.Skills, s)
				}
			}
		}
	}

	acquired, err := mgr.Signup(ctx, in)
	reportAcquired(mgr, acquired, err)
}

func reportAcquired(mgr *session.Manager, ok bool, err error) {
	if err != nil {
		printError(err)
		return
	}
	if !ok {
		fmt.Println("El servidor respondio de forma incompleta. Intenta de nuevo.")
		return
	}
	printStatus(mgr)
}

func printStatus(mgr *session.Manager) {
	snap := mgr.Snapshot()
	fmt.Printf("Estado: %s\n", snap.State)
	if snap.SessionExpired {
		fmt.Println("Tu sesion expiro. Ingresa de nuevo.")
	}
	if snap.User == nil {
		return
	}
	u := snap.User
	fmt.Printf("Usuario: %s <%s> rol=%s\n", u.Name, u.Email, u.Role)
	if u.IsEmployer() {
		fmt.Printf("Empresa: %s\n", u.CompanyName)
	}
	fmt.Printf("Inicio: %s\n", guard.ReturnTarget("", u.Role))
}

func printError(err error) {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		fmt.Printf("Error [%s]: %s\n", ae.Code, ae.Message)
		return
	}
	fmt.Printf("Error: %v\n", err)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
