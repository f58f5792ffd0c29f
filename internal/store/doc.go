// Package store provides PostgreSQL persistence for accounts, the action
// queue, and the block mirror.
//
// Schema (managed externally; no migration tooling here):
//
//	tracked_accounts (
//	    id                  text primary key,
//	    handle              text not null,
//	    access_token        text not null,
//	    block_new_accounts  boolean not null default false,
//	    block_low_followers boolean not null default false,
//	    deactivated         boolean not null default false
//	)
//
//	action_queue (
//	    account_id    text not null,
//	    target_id     text not null,
//	    target_handle text not null default '',
//	    action        text not null default 'BLOCK',
//	    cause         text not null,
//	    created_at    timestamptz not null default now(),
//	    primary key (account_id, target_id)
//	)
//
//	block_mirror (
//	    account_id text not null,
//	    target_id  text not null,
//	    handle     text not null default '',
//	    synced_at  timestamptz not null default now(),
//	    primary key (account_id, target_id)
//	)
package store
