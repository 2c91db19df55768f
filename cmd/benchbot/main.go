// Command benchbot drives a headless client through the handoff: it asks
// the game server's RPC port for a login token the way the account server
// would, then connects to the game port, rekeys, and dumps everything the
// server sends. Useful for smoke-testing a running server without a game
// client.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/coemu/server/internal/crypto"
	"github.com/coemu/server/internal/msg"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/net/packet"
)

func main() {
	rpcAddr := flag.String("rpc", "127.0.0.1:5817", "game server RPC address")
	gameAddr := flag.String("game", "127.0.0.1:5816", "game server client address")
	accountID := flag.Uint("account", 1, "account id to impersonate")
	realmID := flag.Uint("realm", 1, "realm id to impersonate")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, *rpcAddr, *gameAddr, uint32(*accountID), uint32(*realmID)); err != nil {
		log.Fatal("benchbot failed", zap.Error(err))
	}
}

func run(log *zap.Logger, rpcAddr, gameAddr string, accountID, realmID uint32) error {
	tok, err := fetchToken(rpcAddr, accountID, realmID)
	if err != nil {
		return fmt.Errorf("fetch token: %w", err)
	}
	log.Info("login token minted", zap.Uint64("token", tok))

	conn, err := net.DialTimeout("tcp", gameAddr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial game: %w", err)
	}
	defer conn.Close()

	cipher := crypto.NewCQCipher()
	enc := gamenet.NewEncoder(conn, cipher)
	dec := gamenet.NewDecoder(conn, cipher)

	connect := &msg.Connect{Token: tok, BuildVersion: 5017, Language: "En", FileContents: 10}
	if err := enc.WriteFrame(connect.PacketID(), connect.Marshal()); err != nil {
		return fmt.Errorf("send connect: %w", err)
	}
	// The server rekeys after our first packet; mirror it.
	cipher.GenerateKeys(tok)
	log.Info("connected to game server", zap.String("addr", gameAddr))

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		id, body, err := dec.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info("server closed the connection")
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Info("no more packets")
				return nil
			}
			return err
		}
		logPacket(log, id, body)
	}
}

// fetchToken performs the transfer exchange the account server would.
func fetchToken(rpcAddr string, accountID, realmID uint32) (uint64, error) {
	conn, err := net.DialTimeout("tcp", rpcAddr, 5*time.Second)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	enc := gamenet.NewEncoder(conn, crypto.NopCipher{})
	dec := gamenet.NewDecoder(conn, crypto.NopCipher{})

	req := &msg.Transfer{AccountID: accountID, RealmID: realmID}
	if err := enc.WriteFrame(req.PacketID(), req.Marshal()); err != nil {
		return 0, err
	}
	id, body, err := dec.ReadFrame()
	if err != nil {
		return 0, err
	}
	if id != msg.IDTransfer {
		return 0, fmt.Errorf("unexpected rpc answer id %d", id)
	}
	var res msg.Transfer
	if err := res.Unmarshal(packet.NewReader(body)); err != nil {
		return 0, err
	}
	return res.Token, nil
}

func logPacket(log *zap.Logger, id uint16, body []byte) {
	switch id {
	case msg.IDTalk:
		var talk msg.Talk
		if err := talk.Unmarshal(packet.NewReader(body)); err == nil {
			log.Info("talk",
				zap.Uint16("channel", uint16(talk.Channel)),
				zap.String("message", talk.Message),
			)
			return
		}
	case msg.IDUserInfo:
		var info msg.UserInfo
		if err := info.Unmarshal(packet.NewReader(body)); err == nil {
			log.Info("user info",
				zap.Uint32("character", info.CharacterID),
				zap.String("name", info.CharacterName),
				zap.Uint8("level", info.Level),
			)
			return
		}
	}
	log.Info("packet", zap.Uint16("id", id), zap.Int("len", len(body)))
}
