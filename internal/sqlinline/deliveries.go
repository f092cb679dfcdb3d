package sqlinline

const QCreateWebhookDeliveries = `--sql 3f6b2c1e-8a4d-4e7b-9c2a-5d1e0f7a6b3c
create table if not exists webhook_deliveries (
  key text primary key,
  first_seen_at timestamptz not null default now(),
  expires_at timestamptz not null
);
create index if not exists webhook_deliveries_expires_at_idx on webhook_deliveries (expires_at);
`

const QClaimWebhookDelivery = `--sql 8c2e4a7f-1b3d-4f6a-a5e9-0d7c3b2f1e84
insert into webhook_deliveries(key, first_seen_at, expires_at)
values ($1::text, now(), now() + make_interval(secs => $2::double precision))
on conflict (key) do update
  set first_seen_at = excluded.first_seen_at,
      expires_at = excluded.expires_at
  where webhook_deliveries.expires_at <= now()
returning key;
`

const QPurgeExpiredWebhookDeliveries = `--sql b71d9e03-6c4a-4a28-8f15-e2a9c6d4b0f7
delete from webhook_deliveries
where expires_at <= now();
`
