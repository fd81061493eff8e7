package main

import (
	"github.com/spf13/cobra"

	"github.com/softgate/indexfs"
)

func (c *cli) demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo [archive]",
		Short: "Write a sample archive, read it back, and print its contents.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "cache.dat"
			if len(args) == 1 {
				path = args[0]
			}

			fsys, err := sampleFileSystem(c.opts)
			if err != nil {
				return err
			}
			err = fsys.Encode(path)
			fsys.Close()
			if err != nil {
				return err
			}
			c.logger.Info("wrote sample archive", "path", path)

			decoded, err := indexfs.Decode(path, c.opts...)
			if err != nil {
				return err
			}
			defer decoded.Close()
			return printTree(c.stdout, decoded)
		},
	}
}

// sampleFileSystem builds a seven-index archive resembling a small game cache.
func sampleFileSystem(opts []indexfs.Option) (*indexfs.FileSystem, error) {
	fsys := indexfs.New(opts...)

	add := func(id int, name string) (*indexfs.Index, error) {
		return fsys.Add(indexfs.NewNamedIndex(id, name))
	}

	settings, err := add(0, "settings")
	if err != nil {
		return nil, err
	}
	settings.
		Add("item.dat", []byte("data inside item.dat")).
		Add("npc.dat", []byte("data inside npc.dat")).
		Add("obj.dat", []byte("data inside obj.dat"))

	for _, s := range []struct {
		id    int
		name  string
		files []string
	}{
		{1, "model", []string{"0.dat", "1.dat", "2.dat"}},
		{2, "animation", []string{"0.dat", "1.dat", "2.dat"}},
		{3, "music", []string{"soundtrack.midi", "login_music.midi"}},
		{4, "map", []string{"0.dat", "1.dat", "2.dat"}},
		{5, "sound", []string{"low_alch.wav", "high_alch.wav", "telekenitic_grab.wav", "entangle.wav"}},
		{6, "sprites", []string{"sprites.dat"}},
	} {
		idx, err := add(s.id, s.name)
		if err != nil {
			return nil, err
		}
		for _, name := range s.files {
			idx.Reserve(name)
		}
	}
	return fsys, nil
}
