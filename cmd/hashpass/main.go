// Command hashpass reads a password from the terminal and prints its bcrypt
// hash, suitable for the server's -h flag or auth_password_hash setting.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
	"github.com/dmitrijs2005/fibkeeper/internal/cryptox"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func readPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		defer fmt.Fprintln(os.Stderr)
		return term.ReadPassword(fd)
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func main() {
	password, err := readPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read password: %v\n", err)
		os.Exit(1)
	}
	defer common.WipeByteArray(password)

	hash, err := cryptox.HashPassword(password, bcrypt.DefaultCost)
	if err != nil {
		common.WipeByteArray(password)
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}
