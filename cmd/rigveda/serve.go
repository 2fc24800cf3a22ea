package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rigveda-rag/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verse, chat, quiz, translation and audio API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		client, err := a.llm()
		if err != nil {
			return err
		}
		retriever, err := a.retriever()
		if err != nil {
			return err
		}

		srv := server.New(server.Deps{
			Corpus:    a.store,
			Retriever: retriever,
			Chat:      client,
			Quiz:      client,
			Documents: a.vedaweb(),
			Audio:     a.audio(),
		}, logger)

		// Preload the corpus in the background.
		go func() {
			if _, err := a.store.LoadCorpus(ctx); err != nil {
				logger.Warn("corpus preload failed", zap.Error(err))
			}
		}()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}
